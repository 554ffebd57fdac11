package tui

import (
	"fmt"
	"strings"
)

// menuItem is one operation that can be controlled.
type menuItem struct {
	name      string
	gate      string // empty selects the custom QASM operation
	symbol    string
	paramHint string
}

func (it menuItem) needsParams() bool {
	return it.paramHint != ""
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the operation picker categories and items.
var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Pauli-X (NOT)", gate: "x", symbol: "X"},
			{name: "Pauli-Y", gate: "y", symbol: "Y"},
			{name: "Pauli-Z", gate: "z", symbol: "Z"},
			{name: "Hadamard", gate: "h", symbol: "H"},
			{name: "Phase (S)", gate: "s", symbol: "S"},
			{name: "Phase Dagger (S†)", gate: "sdg", symbol: "S†"},
			{name: "T Gate", gate: "t", symbol: "T"},
			{name: "T Dagger (T†)", gate: "tdg", symbol: "T†"},
			{name: "√X (SX)", gate: "sx", symbol: "√X"},
			{name: "√X Dagger", gate: "sxdg", symbol: "√X†"},
			{name: "√Y (SY)", gate: "sy", symbol: "√Y"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gate: "rx", symbol: "RX", paramHint: "pi/2"},
			{name: "Rotate Y", gate: "ry", symbol: "RY", paramHint: "pi/2"},
			{name: "Rotate Z", gate: "rz", symbol: "RZ", paramHint: "pi/2"},
			{name: "Phase Shift", gate: "p", symbol: "P", paramHint: "pi/4"},
			{name: "Universal U1", gate: "u1", symbol: "U1", paramHint: "lam"},
			{name: "Universal U2", gate: "u2", symbol: "U2", paramHint: "phi, lam"},
			{name: "Universal U", gate: "u", symbol: "U", paramHint: "theta, phi, lam"},
		},
	},
	{
		name: "Two Qubit",
		items: []menuItem{
			{name: "CNOT", gate: "cx", symbol: "●─⊕"},
			{name: "Controlled-Z", gate: "cz", symbol: "●─●"},
			{name: "Controlled-H", gate: "ch", symbol: "●─H"},
			{name: "SWAP", gate: "swap", symbol: "×─×"},
			{name: "iSWAP", gate: "iswap", symbol: "iSW"},
			{name: "ZZ Rotation", gate: "rzz", symbol: "ZZ", paramHint: "pi/2"},
			{name: "C-Rotate Y", gate: "cry", symbol: "●─RY", paramHint: "pi/2"},
		},
	},
	{
		name: "Custom",
		items: []menuItem{
			{name: "QASM program", symbol: "{ }"},
		},
	},
}

// renderMenu renders the floating operation picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Choose Operation"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 46)))
	sb.WriteString("\n")

	cat := gateMenu[m.menuCat]
	for i, item := range cat.items[:min(len(cat.items), maxMenuRows)] {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsParams() {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.paramHint)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}

// findMenuItem returns the position of gate in the menu.
func findMenuItem(gate string) (cat, item int, ok bool) {
	for ci, c := range gateMenu {
		for ii, it := range c.items {
			if it.gate == gate {
				return ci, ii, true
			}
		}
	}
	return 0, 0, false
}
