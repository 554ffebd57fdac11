package gates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qctrl/internal/circuit"
)

// ControlledName returns the name of base controlled on n lines: one "c" per
// control up to two, then "c<n>".
func ControlledName(n int, base string) string {
	if n > 2 {
		return fmt.Sprintf("c%d%s", n, base)
	}
	return strings.Repeat("c", n) + base
}

// Controlled returns base closed-controlled on k lines, with the control
// qubits ahead of base's qubits. Controlling an already controlled gate
// stacks the new lines above the existing ones and keeps the original base.
func Controlled(base circuit.Operation, k int) circuit.Operation {
	state := 1<<k - 1
	if base.Control != nil {
		state = base.Control.CtrlState<<k | state
		k += base.Control.NumCtrlQubits
		base = base.Control.Base
	}
	return circuit.Operation{
		Name:      ControlledName(k, base.Name),
		NumQubits: k + base.NumQubits,
		Params:    base.Params,
		Control:   &circuit.Control{NumCtrlQubits: k, CtrlState: state, Base: base},
	}
}

// MCX returns the k-controlled X gate.
func MCX(k int) circuit.Operation { return Controlled(X(), k) }

// MCPhase returns the k-controlled phase gate.
func MCPhase(lam param, k int) circuit.Operation { return Controlled(P(lam), k) }

// MCRX returns the k-controlled X rotation.
func MCRX(theta param, k int) circuit.Operation { return Controlled(RX(theta), k) }

// MCRY returns the k-controlled Y rotation.
func MCRY(theta param, k int) circuit.Operation { return Controlled(RY(theta), k) }

// MCRZ returns the k-controlled Z rotation.
func MCRZ(theta param, k int) circuit.Operation { return Controlled(RZ(theta), k) }

// CU returns the k-controlled U(theta, phi, lam) with an extra phase gamma
// applied when every control is active.
func CU(theta, phi, lam, gamma param, k int) circuit.Operation {
	return Controlled(op("u", 1, theta, phi, lam, gamma), k)
}

var (
	openSuffixRegex = regexp.MustCompile(`^(.+)_o(\d+)$`)
	multiCtrlRegex  = regexp.MustCompile(`^c(\d+)([a-z].*)$`)
)

// New builds the standard gate called name. Besides the fixed table it
// accepts controlled names produced by ControlledName for any standard base
// and an "_o<state>" suffix selecting open controls.
func New(name string, params []circuit.Param) (circuit.Operation, error) {
	if m := openSuffixRegex.FindStringSubmatch(name); m != nil {
		g, err := New(m[1], params)
		if err != nil {
			return circuit.Operation{}, err
		}
		state, _ := strconv.Atoi(m[2])
		if !g.IsControlled() || state >= 1<<g.Control.NumCtrlQubits {
			return circuit.Operation{}, fmt.Errorf("%s: %w", name, ErrUnknownGate)
		}
		return g.WithCtrlState(state), nil
	}

	if s, ok := standard[name]; ok {
		if len(params) != s.numParams {
			return circuit.Operation{}, fmt.Errorf("%s takes %d parameters, got %d: %w", name, s.numParams, len(params), ErrParamCount)
		}
		return s.build(params), nil
	}

	k, baseName := splitControlled(name)
	if k == 0 {
		return circuit.Operation{}, fmt.Errorf("%s: %w", name, ErrUnknownGate)
	}
	if baseName == "u" && len(params) == 4 {
		return CU(params[0], params[1], params[2], params[3], k), nil
	}
	base, err := New(baseName, params)
	if err != nil {
		return circuit.Operation{}, fmt.Errorf("%s: %w", name, err)
	}
	return Controlled(base, k), nil
}

func splitControlled(name string) (int, string) {
	if m := multiCtrlRegex.FindStringSubmatch(name); m != nil {
		k, err := strconv.Atoi(m[1])
		if err != nil || k < 3 {
			return 0, ""
		}
		return k, m[2]
	}
	switch {
	case strings.HasPrefix(name, "cc") && len(name) > 2:
		return 2, name[2:]
	case strings.HasPrefix(name, "c") && len(name) > 1:
		return 1, name[1:]
	}
	return 0, ""
}

// Resolve binds a parsed QASM gate call on numQubits qubits to a standard
// gate.
func Resolve(name string, params []circuit.Param, numQubits int) (circuit.Operation, error) {
	op, err := New(name, params)
	if err != nil {
		return circuit.Operation{}, err
	}
	if op.NumQubits != numQubits {
		return circuit.Operation{}, fmt.Errorf("%s acts on %d qubits, got %d: %w", name, op.NumQubits, numQubits, circuit.ErrSyntax)
	}
	return op, nil
}
