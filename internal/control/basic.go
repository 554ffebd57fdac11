package control

import (
	"fmt"
	"math"

	"qctrl/internal/circuit"
	"qctrl/internal/gates"
)

// applyBasic appends the controlled form of the basis gate g to qc. Every
// control in ctrls gates the emitted instructions; targets are g's qubits.
func applyBasic(qc *circuit.Circuit, g circuit.Operation, ctrls, targets []circuit.Qubit) error {
	n := len(ctrls)
	on := func(op circuit.Operation, extra ...circuit.Qubit) {
		qc.Append(op, append(append([]circuit.Qubit{}, ctrls...), extra...)...)
	}
	t := targets[0]

	switch gates.Lookup(g.Name) {
	case gates.BasisX:
		on(gates.MCX(n), t)
	case gates.BasisRX:
		on(gates.MCRX(g.Param(0), n), t)
	case gates.BasisRY:
		on(gates.MCRY(g.Param(0), n), t)
	case gates.BasisRZ:
		on(gates.MCRZ(g.Param(0), n), t)
	case gates.BasisP:
		on(gates.MCPhase(g.Param(0), n), t)
	case gates.BasisCX:
		on(gates.MCX(n+1), targets[0], targets[1])
	case gates.BasisCZ:
		qc.Append(gates.H(), targets[1])
		on(gates.MCX(n+1), targets[0], targets[1])
		qc.Append(gates.H(), targets[1])
	case gates.BasisU:
		applyU(qc, g.Param(0), g.Param(1), g.Param(2), ctrls, t)
	case gates.BasisZ:
		qc.Append(gates.H(), t)
		on(gates.MCX(n), t)
		qc.Append(gates.H(), t)
	case gates.BasisY:
		qc.Append(gates.Sdg(), t)
		on(gates.MCX(n), t)
		qc.Append(gates.S(), t)
	case gates.BasisH:
		qc.Append(gates.S(), t)
		qc.Append(gates.H(), t)
		qc.Append(gates.T(), t)
		on(gates.MCX(n), t)
		qc.Append(gates.Tdg(), t)
		qc.Append(gates.H(), t)
		qc.Append(gates.Sdg(), t)
	case gates.BasisSX:
		qc.Append(gates.H(), t)
		on(gates.MCPhase(circuit.Value(math.Pi/2), n), t)
		qc.Append(gates.H(), t)
	case gates.BasisSXdg:
		qc.Append(gates.H(), t)
		on(gates.MCPhase(circuit.Value(3*math.Pi/2), n), t)
		qc.Append(gates.H(), t)
	default:
		return fmt.Errorf("%s: %w", g.QASMName(), ErrUnsupportedBasisGate)
	}
	return nil
}

// applyU emits the controlled U(theta, phi, lam). Parameter tests are exact;
// symbolic parameters take the general branch.
func applyU(qc *circuit.Circuit, theta, phi, lam circuit.Param, ctrls []circuit.Qubit, t circuit.Qubit) {
	n := len(ctrls)
	on := func(op circuit.Operation) {
		qc.Append(op, append(append([]circuit.Qubit{}, ctrls...), t)...)
	}
	if n == 1 {
		if theta.IsZero() && phi.IsZero() {
			on(gates.CP(lam))
			return
		}
		on(gates.CU(theta, phi, lam, circuit.Param{}, 1))
		return
	}

	switch {
	case phi.Equals(-math.Pi/2) && lam.Equals(math.Pi/2):
		on(gates.MCRX(theta, n))
	case phi.IsZero() && lam.IsZero():
		on(gates.MCRY(theta, n))
	case theta.IsZero() && phi.IsZero():
		on(gates.MCPhase(lam, n))
	default:
		on(gates.MCRZ(lam, n))
		on(gates.MCRY(theta, n))
		on(gates.MCRZ(phi, n))
		// Phase correction on the first control, gated by the others.
		qc.Append(gates.MCPhase(phi.Add(lam).Scale(0.5), n-1), append(append([]circuit.Qubit{}, ctrls[1:]...), ctrls[0])...)
	}
}
