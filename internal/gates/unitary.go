package gates

import (
	"fmt"
	"math"
	"math/cmplx"

	"qctrl/internal/circuit"
)

const unitaryTol = 1e-9

// Unitary1Q returns an operation named "unitary" implementing m. Its
// definition is a single u(theta, phi, lam) with m's global phase.
func Unitary1Q(m Mat2) (circuit.Operation, error) {
	id := m.Mul(m.Dagger())
	for i := range 2 {
		for j := range 2 {
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(id[i][j]-want) > unitaryTol {
				return circuit.Operation{}, fmt.Errorf("matrix %v: %w", m, ErrNotUnitary)
			}
		}
	}

	theta, phi, lam, gamma := ZYZ(m)
	def := circuit.NewN(1)
	def.AppendAt(U(val(theta), val(phi), val(lam)), 0)
	def.AddGlobalPhase(val(gamma))
	return circuit.Operation{Name: "unitary", NumQubits: 1}.WithDefinition(def), nil
}

// ZYZ returns the angles such that m = exp(i*gamma) * U(theta, phi, lam).
// m must be unitary.
func ZYZ(m Mat2) (theta, phi, lam, gamma float64) {
	a, b, c, d := m[0][0], m[0][1], m[1][0], m[1][1]
	theta = 2 * math.Atan2(cmplx.Abs(c), cmplx.Abs(a))
	switch {
	case cmplx.Abs(c) < unitaryTol:
		gamma = cmplx.Phase(a)
		lam = cmplx.Phase(d) - gamma
	case cmplx.Abs(a) < unitaryTol:
		gamma = cmplx.Phase(-b)
		phi = cmplx.Phase(c) - gamma
	default:
		gamma = cmplx.Phase(a)
		phi = cmplx.Phase(c) - gamma
		lam = cmplx.Phase(-b) - gamma
	}
	return theta, phi, lam, gamma
}
