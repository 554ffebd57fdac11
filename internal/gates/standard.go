package gates

import (
	"maps"
	"math"
	"slices"

	"qctrl/internal/circuit"
)

type param = circuit.Param

func op(name string, numQubits int, params ...param) circuit.Operation {
	return circuit.Operation{Name: name, NumQubits: numQubits, Params: params}
}

func val(v float64) param {
	return circuit.Value(v)
}

// Single-qubit Clifford and fixed-angle gates.

func I() circuit.Operation { return op("id", 1) }
func X() circuit.Operation { return op("x", 1) }
func Y() circuit.Operation { return op("y", 1) }
func Z() circuit.Operation { return op("z", 1) }
func H() circuit.Operation { return op("h", 1) }
func S() circuit.Operation { return op("s", 1) }
func Sdg() circuit.Operation { return op("sdg", 1) }
func T() circuit.Operation { return op("t", 1) }
func Tdg() circuit.Operation { return op("tdg", 1) }
func SX() circuit.Operation { return op("sx", 1) }
func SXdg() circuit.Operation { return op("sxdg", 1) }
func SY() circuit.Operation { return op("sy", 1) }
func SYdg() circuit.Operation { return op("sydg", 1) }

// Parameterized single-qubit gates.

func P(lam param) circuit.Operation { return op("p", 1, lam) }
func U1(lam param) circuit.Operation { return op("u1", 1, lam) }
func U2(phi, lam param) circuit.Operation { return op("u2", 1, phi, lam) }
func U3(theta, phi, lam param) circuit.Operation { return op("u3", 1, theta, phi, lam) }
func U(theta, phi, lam param) circuit.Operation { return op("u", 1, theta, phi, lam) }
func RX(theta param) circuit.Operation { return op("rx", 1, theta) }
func RY(theta param) circuit.Operation { return op("ry", 1, theta) }
func RZ(theta param) circuit.Operation { return op("rz", 1, theta) }

// Two- and three-qubit gates.

func CX() circuit.Operation { return Controlled(X(), 1) }
func CY() circuit.Operation { return Controlled(Y(), 1) }
func CZ() circuit.Operation { return Controlled(Z(), 1) }
func CH() circuit.Operation { return Controlled(H(), 1) }
func CP(lam param) circuit.Operation { return Controlled(P(lam), 1) }
func CRX(theta param) circuit.Operation { return Controlled(RX(theta), 1) }
func CRY(theta param) circuit.Operation { return Controlled(RY(theta), 1) }
func CRZ(theta param) circuit.Operation { return Controlled(RZ(theta), 1) }
func CCX() circuit.Operation { return Controlled(X(), 2) }
func CCZ() circuit.Operation { return Controlled(Z(), 2) }
func CSwap() circuit.Operation { return Controlled(Swap(), 1) }
func Swap() circuit.Operation { return op("swap", 2) }
func ISwap() circuit.Operation { return op("iswap", 2) }
func DCX() circuit.Operation { return op("dcx", 2) }
func RXX(theta param) circuit.Operation { return op("rxx", 2, theta) }
func RZZ(theta param) circuit.Operation { return op("rzz", 2, theta) }

// ctor describes how to build a standard gate from its name.
type ctor struct {
	numParams int
	build     func(p []param) circuit.Operation
}

func fixed(f func() circuit.Operation) ctor {
	return ctor{0, func([]param) circuit.Operation { return f() }}
}

func one(f func(param) circuit.Operation) ctor {
	return ctor{1, func(p []param) circuit.Operation { return f(p[0]) }}
}

var standard = map[string]ctor{
	"id":    fixed(I),
	"x":     fixed(X),
	"y":     fixed(Y),
	"z":     fixed(Z),
	"h":     fixed(H),
	"s":     fixed(S),
	"sdg":   fixed(Sdg),
	"t":     fixed(T),
	"tdg":   fixed(Tdg),
	"sx":    fixed(SX),
	"sxdg":  fixed(SXdg),
	"sy":    fixed(SY),
	"sydg":  fixed(SYdg),
	"p":     one(P),
	"u1":    one(U1),
	"u2":    {2, func(p []param) circuit.Operation { return U2(p[0], p[1]) }},
	"u3":    {3, func(p []param) circuit.Operation { return U3(p[0], p[1], p[2]) }},
	"u":     {3, func(p []param) circuit.Operation { return U(p[0], p[1], p[2]) }},
	"rx":    one(RX),
	"ry":    one(RY),
	"rz":    one(RZ),
	"cx":    fixed(CX),
	"cy":    fixed(CY),
	"cz":    fixed(CZ),
	"ch":    fixed(CH),
	"cp":    one(CP),
	"cu1":   one(func(l param) circuit.Operation { return Controlled(U1(l), 1) }),
	"crx":   one(CRX),
	"cry":   one(CRY),
	"crz":   one(CRZ),
	"cu":    {4, func(p []param) circuit.Operation { return CU(p[0], p[1], p[2], p[3], 1) }},
	"ccx":   fixed(CCX),
	"ccz":   fixed(CCZ),
	"cswap": fixed(CSwap),
	"swap":  fixed(Swap),
	"iswap": fixed(ISwap),
	"dcx":   fixed(DCX),
	"rxx":   one(RXX),
	"rzz":   one(RZZ),
}

// NumParams returns the parameter count of the standard gate name, or -1
// when name is not in the table.
func NumParams(name string) int {
	s, ok := standard[name]
	if !ok {
		return -1
	}
	return s.numParams
}

// Names returns the standard gate names accepted by New.
func Names() []string {
	return slices.Sorted(maps.Keys(standard))
}

// fixedAngles holds the phase equivalents of the fixed-angle diagonal gates.
var fixedAngles = map[string]float64{
	"z":   math.Pi,
	"s":   math.Pi / 2,
	"sdg": -math.Pi / 2,
	"t":   math.Pi / 4,
	"tdg": -math.Pi / 4,
}
