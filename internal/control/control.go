// Package control synthesizes controlled versions of arbitrary operations.
//
// Basis gates are controlled by closed-form constructions. Any other
// operation is first unrolled into the basis, then every instruction of the
// unrolled circuit is controlled on the full control register and the
// collected global phase becomes a controlled phase.
package control

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"qctrl/internal/circuit"
	"qctrl/internal/gates"
	"qctrl/internal/unroll"
)

// Oracle rewrites an operation into a flat circuit over basis on the
// operation's own qubits, returning the global phase separately.
type Oracle interface {
	Unroll(op circuit.Operation, basis map[string]bool) (*circuit.Circuit, circuit.Param, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(op circuit.Operation, basis map[string]bool) (*circuit.Circuit, circuit.Param, error)

func (f OracleFunc) Unroll(op circuit.Operation, basis map[string]bool) (*circuit.Circuit, circuit.Param, error) {
	return f(op, basis)
}

// Synthesizer builds controlled operations. It holds no mutable state and
// is safe for concurrent use.
type Synthesizer struct {
	oracle Oracle
	logger *log.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithOracle replaces the default unroller.
func WithOracle(o Oracle) Option {
	return func(s *Synthesizer) { s.oracle = o }
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Synthesizer) { s.logger = l }
}

// New returns a synthesizer backed by unroll.Unroller unless overridden.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		oracle: unroll.New(unroll.DefaultMaxDepth),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type request struct {
	label string
	state CtrlState
}

// ControlOption configures one Control call.
type ControlOption func(*request)

// WithLabel labels the resulting operation.
func WithLabel(label string) ControlOption {
	return func(r *request) { r.label = label }
}

// WithCtrlState selects the control pattern. Without it every control is
// active on 1.
func WithCtrlState(state CtrlState) ControlOption {
	return func(r *request) { r.state = state }
}

var defaultSynthesizer = New()

// Control returns op controlled on n lines using the default synthesizer.
func Control(op circuit.Operation, n int, opts ...ControlOption) (circuit.Operation, error) {
	return defaultSynthesizer.Control(op, n, opts...)
}

// Control returns op controlled on n additional lines. The result's qubits
// are the n new controls followed by op's qubits. Controlling an operation
// that is already controlled stacks the old control lines above the new
// ones. op is never modified.
func (s *Synthesizer) Control(op circuit.Operation, n int, opts ...ControlOption) (circuit.Operation, error) {
	var req request
	for _, opt := range opts {
		opt(&req)
	}

	state, err := req.state.Resolve(n)
	if err != nil {
		return circuit.Operation{}, fmt.Errorf("control %s: %w", op.QASMName(), err)
	}
	if op.Control != nil && n+op.Control.NumCtrlQubits > MaxCtrlQubits {
		return circuit.Operation{}, fmt.Errorf("control %s: %d total control qubits: %w",
			op.QASMName(), n+op.Control.NumCtrlQubits, ErrInvalidNumCtrlQubits)
	}

	ctrlReg := circuit.NewRegister("control", n)
	tgtReg := circuit.NewRegister("target", op.NumQubits)
	qc := circuit.New(ctrlReg, tgtReg)
	ctrls, targets := ctrlReg.Qubits(), tgtReg.Qubits()

	// Dispatch on the closed form; open lines are restored from op's own
	// state when the result is built.
	closed := op.WithCtrlState(op.ClosedState())

	var phase circuit.Param
	if gates.IsBasisGate(closed) {
		s.logger.Debug("basis dispatch", "op", closed.Name, "controls", n)
		if err := applyBasic(qc, closed, ctrls, targets); err != nil {
			return circuit.Operation{}, fmt.Errorf("control %s: %w", op.QASMName(), err)
		}
	} else {
		flat, p, err := s.oracle.Unroll(closed, gates.BasisSet())
		if err != nil {
			return circuit.Operation{}, fmt.Errorf("control %s: %w", op.QASMName(), err)
		}
		s.logger.Debug("unrolled dispatch", "op", closed.Name, "controls", n, "instructions", flat.Len(), "phase", p)
		phase = p
		for _, inst := range flat.Data() {
			mapped := make([]circuit.Qubit, len(inst.Qubits))
			for i, q := range inst.Qubits {
				mapped[i] = targets[flat.Index(q)]
			}
			if err := applyBasic(qc, inst.Op, ctrls, mapped); err != nil {
				return circuit.Operation{}, fmt.Errorf("control %s: %w", op.QASMName(), err)
			}
		}
	}

	if !phase.IsZero() {
		s.logger.Debug("controlled global phase", "phase", phase)
		if n == 1 {
			qc.Append(gates.P(phase), ctrls[0])
		} else {
			qc.Append(gates.MCPhase(phase, n-1), ctrls...)
		}
	}

	return buildControlled(op, n, state, qc, req.label), nil
}
