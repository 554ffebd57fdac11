package gates

import (
	"fmt"
	"strings"

	"qctrl/internal/circuit"
)

// Parse builds the standard gate called name from a comma separated
// parameter list such as "pi/2, theta".
func Parse(name, params string) (circuit.Operation, error) {
	ps, ok := circuit.ParseParams(params)
	if !ok {
		return circuit.Operation{}, fmt.Errorf("%s parameters %q: %w", name, params, circuit.ErrSyntax)
	}
	return New(strings.ToLower(strings.TrimSpace(name)), ps)
}

// FromQASM wraps a QASM program as an opaque operation called name whose
// definition is the parsed circuit.
func FromQASM(name, src string) (circuit.Operation, error) {
	def, err := circuit.ParseQASM(src, Resolve)
	if err != nil {
		return circuit.Operation{}, err
	}
	if def.NumQubits() == 0 {
		return circuit.Operation{}, fmt.Errorf("%s: no qubits declared: %w", name, circuit.ErrSyntax)
	}
	return circuit.Operation{Name: name, NumQubits: def.NumQubits()}.WithDefinition(def), nil
}
