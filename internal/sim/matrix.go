package sim

import (
	"fmt"
	"math/cmplx"
	"strings"

	"qctrl/internal/circuit"
	"qctrl/internal/gates"
)

// Matrix is a square complex matrix of dimension Dim, row-major. Row and
// column indices are little-endian: bit i addresses qubit i.
type Matrix struct {
	Dim  int
	Data []complex128
}

// NewMatrix returns the zero matrix of dimension dim.
func NewMatrix(dim int) Matrix {
	return Matrix{Dim: dim, Data: make([]complex128, dim*dim)}
}

// Identity returns the identity of dimension dim.
func Identity(dim int) Matrix {
	m := NewMatrix(dim)
	for i := range dim {
		m.Set(i, i, 1)
	}
	return m
}

// FromMat2 converts a 2x2 gate matrix.
func FromMat2(g gates.Mat2) Matrix {
	return Matrix{Dim: 2, Data: []complex128{g[0][0], g[0][1], g[1][0], g[1][1]}}
}

// At returns element (row, col).
func (m Matrix) At(row, col int) complex128 {
	return m.Data[row*m.Dim+col]
}

// Set assigns element (row, col).
func (m Matrix) Set(row, col int, v complex128) {
	m.Data[row*m.Dim+col] = v
}

// NumQubits returns log2 of the dimension.
func (m Matrix) NumQubits() int {
	n := 0
	for 1<<n < m.Dim {
		n++
	}
	return n
}

func (m Matrix) String() string {
	var sb strings.Builder
	for r := range m.Dim {
		for c := range m.Dim {
			v := m.At(r, c)
			fmt.Fprintf(&sb, "%7.3f%+7.3fi ", real(v), imag(v))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ControlledMatrix embeds base behind n control qubits. Controls occupy the
// low qubits; base acts on the qubits above them and only when the control
// bits equal state.
func ControlledMatrix(base Matrix, n, state int) Matrix {
	ctrlDim := 1 << n
	out := Identity(ctrlDim * base.Dim)
	for r := range base.Dim {
		for c := range base.Dim {
			row := state | r<<n
			col := state | c<<n
			out.Set(row, col, base.At(r, c))
		}
	}
	return out
}

// Equal reports whether a and b agree element-wise within tol.
func Equal(a, b Matrix, tol float64) bool {
	if a.Dim != b.Dim {
		return false
	}
	for i := range a.Data {
		if cmplx.Abs(a.Data[i]-b.Data[i]) > tol {
			return false
		}
	}
	return true
}

// EqualUpToPhase reports whether a = exp(i*phi) * b for some phi.
func EqualUpToPhase(a, b Matrix, tol float64) bool {
	if a.Dim != b.Dim {
		return false
	}
	pivot := 0
	for i := range a.Data {
		if cmplx.Abs(a.Data[i]) > cmplx.Abs(a.Data[pivot]) {
			pivot = i
		}
	}
	if cmplx.Abs(b.Data[pivot]) < tol {
		return false
	}
	phase := a.Data[pivot] / b.Data[pivot]
	phase /= complex(cmplx.Abs(phase), 0)
	for i := range a.Data {
		if cmplx.Abs(a.Data[i]-phase*b.Data[i]) > tol {
			return false
		}
	}
	return true
}

// OperationMatrix returns the unitary of op over its own qubits, in op's
// wire order. Controlled operations are built from their base matrix;
// everything else uses the gate matrix or recurses into the definition.
func OperationMatrix(op circuit.Operation) (Matrix, error) {
	params, err := boundParams(op)
	if err != nil {
		return Matrix{}, err
	}
	if op.Control != nil {
		base, err := OperationMatrix(op.Control.Base)
		if err != nil {
			return Matrix{}, err
		}
		return ControlledMatrix(base, op.Control.NumCtrlQubits, op.Control.CtrlState), nil
	}
	if m, ok := gates.Matrix(op.Name, params); ok && op.NumQubits == 1 {
		return FromMat2(m), nil
	}
	def := gates.Definition(op)
	if def == nil {
		return Matrix{}, fmt.Errorf("%s: %w", op.Name, ErrUnknownOperation)
	}
	return Unitary(def)
}

func boundParams(op circuit.Operation) ([]float64, error) {
	params := make([]float64, len(op.Params))
	for i, p := range op.Params {
		v, ok := p.Float()
		if !ok {
			return nil, fmt.Errorf("%s parameter %s: %w", op.Name, p, ErrUnboundParameter)
		}
		params[i] = v
	}
	return params, nil
}

// Unitary returns the matrix of c, including its global phase.
func Unitary(c *circuit.Circuit) (Matrix, error) {
	n := c.NumQubits()
	dim := 1 << n
	steps, phase, err := compile(c)
	if err != nil {
		return Matrix{}, err
	}
	out := NewMatrix(dim)
	for col := range dim {
		sv := NewBasisState(n, col)
		sv.runSteps(steps, phase)
		for row, amp := range sv.Amplitudes {
			out.Set(row, col, amp)
		}
	}
	return out, nil
}
