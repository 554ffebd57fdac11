package sim

import (
	"errors"
	"fmt"

	"qctrl/internal/circuit"
)

// ErrMismatch is returned by CheckControlled when the synthesized circuit
// does not implement the controlled operation.
var ErrMismatch = errors.New("synthesized unitary does not match reference")

// CheckControlled compares the definition of result against src embedded
// behind n controls in state. Global phase must match.
func CheckControlled(src, result circuit.Operation, n, state int, tol float64) error {
	base, err := OperationMatrix(src)
	if err != nil {
		return err
	}
	def := result.Definition()
	if def == nil {
		return fmt.Errorf("%s: %w", result.Name, ErrUnknownOperation)
	}
	got, err := Unitary(def)
	if err != nil {
		return err
	}
	want := ControlledMatrix(base, n, state)
	if !Equal(want, got, tol) {
		if EqualUpToPhase(want, got, tol) {
			return fmt.Errorf("%s: differs by a global phase: %w", result.QASMName(), ErrMismatch)
		}
		return fmt.Errorf("%s: %w", result.QASMName(), ErrMismatch)
	}
	return nil
}

// TargetResponse runs the definition of result from the basis state whose
// first n qubits hold pattern and whose targets are |0>, and returns the
// marginal distribution of each target qubit.
func TargetResponse(result circuit.Operation, n, pattern int) ([]QubitProbability, error) {
	def := result.Definition()
	if def == nil {
		return nil, fmt.Errorf("%s: %w", result.Name, ErrUnknownOperation)
	}
	if n < 1 || n >= def.NumQubits() || pattern < 0 || pattern >= 1<<n {
		return nil, fmt.Errorf("pattern %d on %d controls: %w", pattern, n, ErrControlPattern)
	}
	sv := NewBasisState(def.NumQubits(), pattern)
	if err := sv.Run(def); err != nil {
		return nil, err
	}
	return sv.QubitProbabilities()[n:], nil
}
