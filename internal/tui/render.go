package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"qctrl/internal/control"
)

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the synthesized circuit and its summary.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	title := "Controlled Operation"
	if m.showUnrolled {
		title += " [UNROLLED]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	gate := m.gate
	if gate == "" {
		gate = customName
	}
	fmt.Fprintf(&sb, "  %s  controls: %s  state: %s\n",
		activeStyle.Render(gate),
		activeStyle.Render(fmt.Sprint(m.numCtrl)),
		activeStyle.Render(m.stateLabel()))

	if m.errMsg != "" {
		sb.WriteString("\n  " + errorStyle.Render(m.errMsg) + "\n")
		return circuitStyle.Width(width).Height(height).Render(sb.String())
	}

	fmt.Fprintf(&sb, "  result: %s  instructions: %d  depth: %d\n\n",
		gateStyle.Render(m.result.QASMName()), m.view.Len(), m.view.Depth())
	diagram := renderDiagram(m.view, stylePainter)
	sb.WriteString(lipgloss.NewStyle().MaxWidth(max(width-4, 10)).Render(diagram))
	sb.WriteString("\n")

	if m.statusMsg != "" {
		style := activeStyle
		if strings.HasPrefix(m.statusMsg, "✓") {
			style = okStyle
		} else if strings.HasPrefix(m.statusMsg, "✗") {
			style = errorStyle
		}
		sb.WriteString("\n  " + style.Render(m.statusMsg))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// stateLabel shows the resolved control state as a bitstring, last control
// leftmost.
func (m Model) stateLabel() string {
	if m.errMsg != "" || m.view == nil {
		if v := m.stateInput.Value(); v != "" {
			return v
		}
		return "all ones"
	}
	return "0b" + control.Encode(m.state, m.numCtrl)
}

// renderQASMPanel shows the QASM of the synthesized circuit, or the custom
// operation editor while it has focus.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	if m.focus == focusCustom {
		sb.WriteString(titleStyle.Render("Custom Operation [ACTIVE]"))
		sb.WriteString("\n\n")
		sb.WriteString(m.editor.View())
		return qasmStyle.Width(width).Height(height).Render(sb.String())
	}

	sb.WriteString(titleStyle.Render("QASM"))
	sb.WriteString("\n\n")
	if m.view != nil {
		lines := strings.Split(m.view.ToQASM(), "\n")
		if limit := height - 4; limit > 0 && len(lines) > limit {
			lines = append(lines[:limit-1], dimStyle.Render(fmt.Sprintf("… %d more lines", len(lines)-limit+1)))
		}
		sb.WriteString(strings.Join(lines, "\n"))
	}

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeStyle.Render("Request:  "))
	sb.WriteString("a Choose op  +/- Controls  p Params  s Ctrl state  e Edit custom QASM\n")

	sb.WriteString(activeStyle.Render("Actions:  "))
	sb.WriteString("v Verify  u Toggle unrolled  ^S Save  Tab Leave editor  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// renderInput renders a text input overlay.
func (m Model) renderInput(title string, input textinput.Model, hint string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(input.View())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(hint))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("⏎ Apply  Esc Cancel"))
	return menuBorderStyle.Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine
// with overlay. ANSI escape sequences in bgLine are copied through.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := lipgloss.Width(overlay)

	var prefix, suffix strings.Builder
	col, i := 0, 0

	// Collect prefix: everything up to visible column x
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			i = copyEscape(&prefix, runes, i)
			continue
		}
		prefix.WriteRune(runes[i])
		col++
		i++
	}
	for ; col < x; col++ {
		prefix.WriteRune(' ')
	}

	// Skip over ovWidth visible columns in the background
	for skipped := 0; i < len(runes) && skipped < ovWidth; {
		if runes[i] == '\x1b' {
			i = copyEscape(nil, runes, i)
			continue
		}
		skipped++
		i++
	}

	for ; i < len(runes); i++ {
		suffix.WriteRune(runes[i])
	}
	return prefix.String() + overlay + suffix.String()
}

// copyEscape consumes the escape sequence starting at runes[i], writing it
// to sb when non-nil, and returns the index after it.
func copyEscape(sb *strings.Builder, runes []rune, i int) int {
	start := i
	i++
	for i < len(runes) {
		r := runes[i]
		i++
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			break
		}
	}
	if sb != nil {
		sb.WriteString(string(runes[start:i]))
	}
	return i
}
