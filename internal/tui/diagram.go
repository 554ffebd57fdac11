package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qctrl/internal/circuit"
)

type cellKind int

const (
	cellWire cellKind = iota
	cellCross
	cellClosed
	cellOpen
	cellTarget
	cellSwap
	cellBox
)

// cell is one wire in one step. up and down mark a connector to the
// neighbouring wire.
type cell struct {
	kind     cellKind
	label    string
	up, down bool
}

// painter styles a rendered symbol; plainPainter leaves it untouched.
type painter func(kind cellKind, s string) string

func plainPainter(_ cellKind, s string) string { return s }

func stylePainter(kind cellKind, s string) string {
	switch kind {
	case cellOpen:
		return openCtrlStyle.Render(s)
	case cellClosed, cellTarget, cellSwap, cellBox:
		return gateStyle.Render(s)
	}
	return s
}

// RenderDiagram draws c as text, one step per column. Closed controls are
// drawn as ●, open controls as ○.
func RenderDiagram(c *circuit.Circuit) string {
	return renderDiagram(c, plainPainter)
}

func renderDiagram(c *circuit.Circuit, paint painter) string {
	n := c.NumQubits()
	if n == 0 {
		return ""
	}
	columns := buildGrid(c)

	labelW := 0
	for _, q := range c.Qubits() {
		labelW = max(labelW, lipgloss.Width(q.String()))
	}
	labelW += 1

	var lines []string
	if !c.GlobalPhase.IsZero() {
		lines = append(lines, "global phase: "+c.GlobalPhase.String())
	}
	for w, q := range c.Qubits() {
		top := strings.Repeat(" ", labelW+2)
		mid := padRight(q.String(), labelW) + "──"
		bot := top
		for _, col := range columns {
			t, m, b := renderCell(col.cells[w], col.width, paint)
			top += t
			mid += m
			bot += b
		}
		lines = append(lines, strings.TrimRight(top, " "), mid+"─", strings.TrimRight(bot, " "))
	}
	return strings.Join(lines, "\n")
}

type column struct {
	cells []cell
	width int
}

// buildGrid lays out every step of c.Layers as a column of cells.
func buildGrid(c *circuit.Circuit) []column {
	n := c.NumQubits()
	data := c.Data()
	var columns []column
	for _, layer := range c.Layers() {
		col := column{cells: make([]cell, n), width: minCellW}
		for _, idx := range layer {
			inst := data[idx]
			wires := c.Indices(inst.Qubits)
			placeInstruction(col.cells, inst.Op, wires)
		}
		for _, cl := range col.cells {
			if cl.kind == cellBox {
				col.width = max(col.width, lipgloss.Width(cl.label)+boxPadding)
			}
		}
		if col.width%2 == 0 {
			col.width++
		}
		columns = append(columns, col)
	}
	return columns
}

// placeInstruction marks the cells for op acting on wires.
func placeInstruction(cells []cell, op circuit.Operation, wires []int) {
	lo, hi := wires[0], wires[0]
	for _, w := range wires {
		lo, hi = min(lo, w), max(hi, w)
	}
	used := make(map[int]bool, len(wires))

	targets := wires
	base := op
	if op.Control != nil {
		k := op.Control.NumCtrlQubits
		for i, w := range wires[:k] {
			kind := cellOpen
			if op.Control.CtrlState>>i&1 == 1 {
				kind = cellClosed
			}
			cells[w] = cell{kind: kind}
			used[w] = true
		}
		targets = wires[k:]
		base = op.Control.Base
	}

	label := opLabel(base)
	for _, w := range targets {
		switch {
		case base.Name == "x" && op.Control != nil:
			cells[w] = cell{kind: cellTarget}
		case base.Name == "swap":
			cells[w] = cell{kind: cellSwap}
		default:
			cells[w] = cell{kind: cellBox, label: label}
		}
		used[w] = true
	}

	for w := lo; w <= hi; w++ {
		if !used[w] {
			cells[w] = cell{kind: cellCross}
		}
		cells[w].up = w > lo
		cells[w].down = w < hi
	}
}

// opLabel is the box text for op: its name and any parameters.
func opLabel(op circuit.Operation) string {
	name := strings.ToUpper(op.Name)
	if op.Label != "" {
		name = op.Label
	}
	if len(op.Params) == 0 {
		return name
	}
	parts := make([]string, len(op.Params))
	for i, p := range op.Params {
		if v, ok := p.Float(); ok {
			parts[i] = circuit.FormatParam(v)
		} else {
			parts[i] = p.String()
		}
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// renderCell returns 3 lines (top, mid, bot) for a single cell, each w
// columns wide.
func renderCell(c cell, w int, paint painter) (top, mid, bot string) {
	half := w / 2
	empty := strings.Repeat(" ", w)
	vert := strings.Repeat(" ", half) + "│" + strings.Repeat(" ", w-half-1)
	onWire := func(sym string, kind cellKind) string {
		return strings.Repeat("─", half) + paint(kind, sym) + strings.Repeat("─", w-half-1)
	}

	top, bot = empty, empty
	if c.up {
		top = vert
	}
	if c.down {
		bot = vert
	}

	switch c.kind {
	case cellWire:
		mid = strings.Repeat("─", w)
	case cellCross:
		mid = onWire("┼", cellCross)
	case cellClosed:
		mid = onWire("●", cellClosed)
	case cellOpen:
		mid = onWire("○", cellOpen)
	case cellTarget:
		mid = onWire("⊕", cellTarget)
	case cellSwap:
		mid = onWire("×", cellSwap)
	case cellBox:
		inner := w - 2
		name := padCenter(c.label, inner-2)
		top = paint(cellBox, boxEdge("┌", "┐", "┴", inner, c.up))
		mid = paint(cellBox, "┤ "+name+" ├")
		bot = paint(cellBox, boxEdge("└", "┘", "┬", inner, c.down))
	}
	return top, mid, bot
}

// boxEdge draws the top or bottom border of a box, with a connector in
// the middle when joined to a neighbouring wire.
func boxEdge(left, right, joint string, inner int, joined bool) string {
	if !joined {
		return left + strings.Repeat("─", inner) + right
	}
	l := (inner - 1) / 2
	return left + strings.Repeat("─", l) + joint + strings.Repeat("─", inner-l-1) + right
}

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	sw := lipgloss.Width(s)
	if sw >= width {
		return s
	}
	total := width - sw
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}
