package circuit

import "fmt"

// Control describes the control lines of a controlled operation.
// Control qubit i is active when bit i of CtrlState is set; the control
// qubits always precede the base operation's qubits.
type Control struct {
	NumCtrlQubits int
	CtrlState     int
	Base          Operation
}

// Operation is an immutable gate value. Copies share their parameter slice
// and definition, so callers must treat both as read-only and use the With*
// helpers to derive new values.
type Operation struct {
	Name      string
	NumQubits int
	Params    []Param
	Label     string
	Control   *Control // nil unless controlled

	def *Circuit // closed definition (all controls active on 1)
}

// IsControlled reports whether the operation carries control lines.
func (op Operation) IsControlled() bool {
	return op.Control != nil
}

// ClosedState returns the all-ones control state for the operation's
// control lines, or 0 for an uncontrolled operation.
func (op Operation) ClosedState() int {
	if op.Control == nil {
		return 0
	}
	return 1<<op.Control.NumCtrlQubits - 1
}

// IsOpenControlled reports whether at least one control line is active on 0.
func (op Operation) IsOpenControlled() bool {
	return op.Control != nil && op.Control.CtrlState != op.ClosedState()
}

// Param returns the i-th parameter or the zero parameter when absent.
func (op Operation) Param(i int) Param {
	if i < 0 || i >= len(op.Params) {
		return Param{}
	}
	return op.Params[i]
}

// WithLabel returns a copy of op carrying label.
func (op Operation) WithLabel(label string) Operation {
	op.Label = label
	return op
}

// WithCtrlState returns a copy of op with its control state replaced. The
// original operation and its Control block are left untouched.
func (op Operation) WithCtrlState(state int) Operation {
	if op.Control == nil {
		return op
	}
	ctrl := *op.Control
	ctrl.CtrlState = state
	op.Control = &ctrl
	return op
}

// WithDefinition returns a copy of op defined by def. For a controlled
// operation def must be the closed form, with every control active on 1.
func (op Operation) WithDefinition(def *Circuit) Operation {
	op.def = def
	return op
}

// HasDefinition reports whether an explicit definition is attached.
func (op Operation) HasDefinition() bool {
	return op.def != nil
}

// Definition returns the attached definition, or nil. For open-controlled
// operations the closed definition is conjugated with X on every control
// line whose state bit is 0.
func (op Operation) Definition() *Circuit {
	if op.def == nil {
		return nil
	}
	if !op.IsOpenControlled() {
		return op.def
	}
	return WithOpenControls(op.def, op.Control.NumCtrlQubits, op.Control.CtrlState)
}

// WithOpenControls wraps closed in X gates on each of the first numCtrl
// qubits whose bit in state is 0.
func WithOpenControls(closed *Circuit, numCtrl, state int) *Circuit {
	out := closed.emptyCopy()
	qubits := closed.Qubits()
	flip := func() {
		for i := range numCtrl {
			if state>>i&1 == 0 {
				out.Append(flipOp, qubits[i])
			}
		}
	}
	flip()
	out.data = append(out.data, closed.data...)
	flip()
	out.GlobalPhase = closed.GlobalPhase
	return out
}

// flipOp is the bit-flip used to open control lines.
var flipOp = Operation{Name: "x", NumQubits: 1}

// QASMName returns the name used on the wire: open-controlled operations
// carry an "_o<state>" suffix so they never collide with their closed form.
func (op Operation) QASMName() string {
	if op.IsOpenControlled() {
		return fmt.Sprintf("%s_o%d", op.Name, op.Control.CtrlState)
	}
	return op.Name
}

// String renders op as name(params).
func (op Operation) String() string {
	if len(op.Params) == 0 {
		return op.QASMName()
	}
	return fmt.Sprintf("%s(%s)", op.QASMName(), joinParams(op.Params))
}
