package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"qctrl/internal/circuit"
	"qctrl/internal/config"
	"qctrl/internal/control"
	"qctrl/internal/gates"
	"qctrl/internal/sim"
	"qctrl/internal/unroll"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusMain focus = iota
	focusMenu
	focusParams
	focusState
	focusCustom
)

// SaveFile is where ctrl+s writes the synthesized circuit.
const SaveFile = "controlled.qasm"

// maxControls bounds the control count in the UI so that the unrolled
// view and verification stay interactive.
const maxControls = 8

// customName names the operation built from the QASM editor.
const customName = "custom"

const defaultCustomQASM = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
h q[0];
cx q[0], q[1];
rz(pi/4) q[1];
`

// Model represents the TUI application state.
type Model struct {
	synth    *control.Synthesizer
	unroller *unroll.Unroller
	tol      float64

	width  int
	height int
	focus  focus

	// Menu state
	menuCat  int
	menuItem int

	// Synthesis request
	gate       string // empty means the custom QASM operation
	numCtrl    int
	paramInput textinput.Model
	stateInput textinput.Model
	editor     textarea.Model
	prevInput  string // restored when an input is cancelled

	// Synthesis result
	src          circuit.Operation
	result       circuit.Operation
	state        int
	view         *circuit.Circuit
	showUnrolled bool
	errMsg       string
	statusMsg    string // transient status message (e.g. save confirmation)
}

// New builds the initial model from cfg. Synthesis diagnostics go to logger.
func New(cfg *config.Config, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	u := unroll.New(cfg.MaxUnrollDepth)
	u.Logger = logger

	params := textinput.New()
	params.Prompt = "params: "
	params.CharLimit = 120
	params.SetValue(strings.Join(cfg.Params, ", "))

	si := textinput.New()
	si.Prompt = "ctrl_state: "
	si.Placeholder = "all ones"
	si.CharLimit = control.MaxCtrlQubits + 2
	si.SetValue(cfg.CtrlState.String())

	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(12)
	ta.ShowLineNumbers = true
	ta.SetValue(defaultCustomQASM)

	m := Model{
		synth:      control.New(control.WithOracle(u), control.WithLogger(logger)),
		unroller:   u,
		tol:        cfg.Tolerance,
		gate:       cfg.Gate,
		numCtrl:    cfg.NumCtrlQubits,
		paramInput: params,
		stateInput: si,
		editor:     ta,
	}
	if cat, item, ok := findMenuItem(cfg.Gate); ok {
		m.menuCat, m.menuItem = cat, item
	}
	m.synthesize()
	return m
}

// Run starts the terminal UI and blocks until it exits.
func Run(cfg *config.Config, logger *log.Logger) error {
	_, err := tea.NewProgram(New(cfg, logger), tea.WithAltScreen()).Run()
	return err
}

// source builds the operation to be controlled from the current inputs.
func (m *Model) source() (circuit.Operation, error) {
	if m.gate == "" {
		return gates.FromQASM(customName, m.editor.Value())
	}
	return gates.Parse(m.gate, m.paramInput.Value())
}

// synthesize rebuilds the controlled operation and its displayed circuit.
func (m *Model) synthesize() {
	m.errMsg = ""
	m.view = nil

	src, err := m.source()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	cs, err := control.ParseCtrlState(m.stateInput.Value())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	state, err := cs.Resolve(m.numCtrl)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	result, err := m.synth.Control(src, m.numCtrl, control.WithCtrlState(cs))
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.src, m.result, m.state = src, result, state
	m.view = result.Definition()

	if m.showUnrolled {
		flat, phase, err := m.unroller.Unroll(result, gates.BasisSet())
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		flat.AddGlobalPhase(phase)
		m.view = flat
	}
}

// verify checks the synthesized circuit against the reference matrix.
func (m *Model) verify() {
	if m.view == nil {
		m.statusMsg = "Nothing to verify"
		return
	}
	err := sim.CheckControlled(m.src, m.result, m.numCtrl, m.state, m.tol)
	switch {
	case err == nil:
		m.statusMsg = "✓ verified: unitary matches the controlled operation"
		if probs, err := sim.TargetResponse(m.result, m.numCtrl, m.state); err == nil {
			parts := make([]string, len(probs))
			for i, p := range probs {
				parts[i] = fmt.Sprintf("%.2f", p.Prob1)
			}
			m.statusMsg += "; P(target=1) when active: " + strings.Join(parts, " ")
		}
	case errors.Is(err, sim.ErrUnboundParameter):
		m.statusMsg = "Cannot verify symbolic parameters"
	default:
		m.statusMsg = "✗ " + err.Error()
	}
}

func (m *Model) save() {
	if m.view == nil {
		m.statusMsg = "Nothing to save"
		return
	}
	if err := os.WriteFile(SaveFile, []byte(m.view.ToQASM()), 0644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.statusMsg = "Saved " + SaveFile
}

// selectItem applies the chosen menu entry.
func (m *Model) selectItem(item menuItem) {
	if item.gate == "" {
		m.gate = ""
		m.focus = focusCustom
		m.editor.Focus()
		return
	}
	m.gate = item.gate
	m.paramInput.SetValue("")
	if item.needsParams() {
		m.paramInput.Placeholder = item.paramHint
		m.paramInput.SetValue(item.paramHint)
		m.prevInput = item.paramHint
		m.focus = focusParams
		m.paramInput.Focus()
		m.paramInput.CursorEnd()
		return
	}
	m.focus = focusMain
	m.synthesize()
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(msg.Width/3-6, 20))
		m.editor.SetHeight(max(msg.Height-16, 4))

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusMain:
			m.statusMsg = ""
			switch key {
			case "q":
				return m, tea.Quit
			case "a":
				m.focus = focusMenu
			case "+", "=":
				if m.numCtrl < maxControls {
					m.numCtrl++
					m.synthesize()
				}
			case "-":
				if m.numCtrl > 1 {
					m.numCtrl--
					m.synthesize()
				}
			case "p":
				if m.gate != "" {
					m.prevInput = m.paramInput.Value()
					m.focus = focusParams
					cmds = append(cmds, m.paramInput.Focus())
				}
			case "s":
				m.prevInput = m.stateInput.Value()
				m.focus = focusState
				cmds = append(cmds, m.stateInput.Focus())
			case "e":
				m.gate = ""
				m.focus = focusCustom
				cmds = append(cmds, m.editor.Focus())
			case "u":
				m.showUnrolled = !m.showUnrolled
				m.synthesize()
			case "v":
				m.verify()
			case "ctrl+s":
				m.save()
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusMain
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				m.selectItem(gateMenu[m.menuCat].items[m.menuItem])
			}

		case focusParams, focusState:
			input := &m.paramInput
			if m.focus == focusState {
				input = &m.stateInput
			}
			switch key {
			case "esc":
				input.SetValue(m.prevInput)
				input.Blur()
				m.focus = focusMain
				m.synthesize()
			case "enter":
				input.Blur()
				m.focus = focusMain
				m.synthesize()
			default:
				var cmd tea.Cmd
				*input, cmd = input.Update(msg)
				cmds = append(cmds, cmd)
			}

		case focusCustom:
			switch key {
			case "tab", "esc":
				m.editor.Blur()
				m.focus = focusMain
				m.synthesize()
			default:
				var cmd tea.Cmd
				m.editor, cmd = m.editor.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4
	controlsHeight := 6
	circuitHeight := max(m.height-controlsHeight-2, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	qasmPanel := m.renderQASMPanel(qasmWidth, circuitHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, qasmPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusParams:
		frame = overlayAt(frame, m.renderInput("Parameters", m.paramInput, "Examples: pi/2, 3*pi/4, theta"), 2, 2)
	case focusState:
		frame = overlayAt(frame, m.renderInput("Control State", m.stateInput, "Examples: 3, 0b101 (last control leftmost)"), 2, 2)
	}

	return frame
}
