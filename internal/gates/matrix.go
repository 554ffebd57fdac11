package gates

import (
	"math"
	"math/cmplx"
)

// Mat2 is a 2x2 complex matrix in row-major order.
type Mat2 [2][2]complex128

// Mul returns m * o.
func (m Mat2) Mul(o Mat2) Mat2 {
	var out Mat2
	for i := range 2 {
		for j := range 2 {
			out[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return out
}

// Dagger returns the conjugate transpose of m.
func (m Mat2) Dagger() Mat2 {
	return Mat2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// Scale returns s * m.
func (m Mat2) Scale(s complex128) Mat2 {
	return Mat2{{s * m[0][0], s * m[0][1]}, {s * m[1][0], s * m[1][1]}}
}

func expi(x float64) complex128 {
	return cmplx.Exp(complex(0, x))
}

// uMatrix is the generic single-qubit rotation U(theta, phi, lam).
func uMatrix(theta, phi, lam float64) Mat2 {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return Mat2{
		{complex(c, 0), -expi(lam) * complex(s, 0)},
		{expi(phi) * complex(s, 0), expi(phi+lam) * complex(c, 0)},
	}
}

func phaseMatrix(lam float64) Mat2 {
	return Mat2{{1, 0}, {0, expi(lam)}}
}

// Matrix returns the matrix of the single-qubit standard gate name with
// bound parameters. The four-parameter u carries an extra global phase.
func Matrix(name string, params []float64) (Mat2, bool) {
	p := func(i int) float64 {
		if i < len(params) {
			return params[i]
		}
		return 0
	}
	h := complex(1/math.Sqrt2, 0)

	switch name {
	case "id":
		return Mat2{{1, 0}, {0, 1}}, true
	case "x":
		return Mat2{{0, 1}, {1, 0}}, true
	case "y":
		return Mat2{{0, -1i}, {1i, 0}}, true
	case "z", "s", "sdg", "t", "tdg":
		return phaseMatrix(fixedAngles[name]), true
	case "h":
		return Mat2{{h, h}, {h, -h}}, true
	case "sx":
		return Mat2{{(1 + 1i) / 2, (1 - 1i) / 2}, {(1 - 1i) / 2, (1 + 1i) / 2}}, true
	case "sxdg":
		return Mat2{{(1 - 1i) / 2, (1 + 1i) / 2}, {(1 + 1i) / 2, (1 - 1i) / 2}}, true
	case "sy":
		return Mat2{{(1 + 1i) / 2, -(1 + 1i) / 2}, {(1 + 1i) / 2, (1 + 1i) / 2}}, true
	case "sydg":
		return Mat2{{(1 - 1i) / 2, (1 - 1i) / 2}, {-(1 - 1i) / 2, (1 - 1i) / 2}}, true
	case "p", "u1":
		return phaseMatrix(p(0)), true
	case "u2":
		return uMatrix(math.Pi/2, p(0), p(1)), true
	case "u", "u3":
		return uMatrix(p(0), p(1), p(2)).Scale(expi(p(3))), true
	case "rx":
		c, s := math.Cos(p(0)/2), math.Sin(p(0)/2)
		return Mat2{{complex(c, 0), complex(0, -s)}, {complex(0, -s), complex(c, 0)}}, true
	case "ry":
		c, s := math.Cos(p(0)/2), math.Sin(p(0)/2)
		return Mat2{{complex(c, 0), complex(-s, 0)}, {complex(s, 0), complex(c, 0)}}, true
	case "rz":
		return Mat2{{expi(-p(0) / 2), 0}, {0, expi(p(0) / 2)}}, true
	}
	return Mat2{}, false
}
