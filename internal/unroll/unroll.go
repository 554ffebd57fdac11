// Package unroll rewrites operations into a flat circuit over a basis by
// recursively expanding definitions.
package unroll

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"qctrl/internal/circuit"
	"qctrl/internal/gates"
)

// ErrNoTranslationPath is returned when an operation cannot be expressed in
// the requested basis.
var ErrNoTranslationPath = errors.New("no translation path")

// DefaultMaxDepth bounds definition nesting.
const DefaultMaxDepth = 64

// Unroller expands definitions until every instruction is in the basis.
type Unroller struct {
	MaxDepth int
	Logger   *log.Logger
}

// New returns an unroller with the given depth limit. A non-positive limit
// selects DefaultMaxDepth.
func New(maxDepth int) *Unroller {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Unroller{MaxDepth: maxDepth}
}

// Unroll returns a circuit on op.NumQubits qubits, in op's wire order, made
// only of gates named in basis, together with the global phase collected from
// every definition expanded along the way. The returned circuit's own global
// phase is zero.
func (u *Unroller) Unroll(op circuit.Operation, basis map[string]bool) (*circuit.Circuit, circuit.Param, error) {
	out := circuit.NewN(op.NumQubits)
	wires := make([]int, op.NumQubits)
	for i := range wires {
		wires[i] = i
	}
	var phase circuit.Param
	if err := u.expand(out, &phase, op, wires, basis, 0); err != nil {
		return nil, circuit.Param{}, err
	}
	if u.Logger != nil {
		u.Logger.Debug("unrolled", "op", op.QASMName(), "instructions", out.Len(), "phase", phase)
	}
	return out, phase, nil
}

func (u *Unroller) expand(out *circuit.Circuit, phase *circuit.Param, op circuit.Operation, wires []int, basis map[string]bool, depth int) error {
	if basis[op.Name] && !op.IsOpenControlled() && gates.HasStandardArity(op) {
		out.AppendAt(op, wires...)
		return nil
	}
	maxDepth := u.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if depth >= maxDepth {
		return fmt.Errorf("%s: depth limit %d exceeded: %w", op.QASMName(), maxDepth, ErrNoTranslationPath)
	}
	def := gates.Definition(op)
	if def == nil {
		return fmt.Errorf("%s: %w", op.QASMName(), ErrNoTranslationPath)
	}
	*phase = phase.Add(def.GlobalPhase)
	for _, inst := range def.Data() {
		local := def.Indices(inst.Qubits)
		mapped := make([]int, len(local))
		for i, l := range local {
			mapped[i] = wires[l]
		}
		if err := u.expand(out, phase, inst.Op, mapped, basis, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Unroll expands op with a default unroller.
func Unroll(op circuit.Operation, basis map[string]bool) (*circuit.Circuit, circuit.Param, error) {
	return New(DefaultMaxDepth).Unroll(op, basis)
}
