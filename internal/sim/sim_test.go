package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qctrl/internal/circuit"
	"qctrl/internal/gates"
)

const tol = 1e-9

func mustUnitary(t *testing.T, c *circuit.Circuit) Matrix {
	t.Helper()
	u, err := Unitary(c)
	require.NoError(t, err)
	return u
}

func TestBellStateProbabilities(t *testing.T) {
	c := circuit.NewN(2)
	c.AppendAt(gates.H(), 0)
	c.AppendAt(gates.CX(), 0, 1)

	sv := NewBasisState(2, 0)
	require.NoError(t, sv.Run(c))

	probs := sv.Probabilities()
	assert.InDelta(t, 0.5, probs[0], tol)
	assert.InDelta(t, 0, probs[1], tol)
	assert.InDelta(t, 0, probs[2], tol)
	assert.InDelta(t, 0.5, probs[3], tol)

	for _, qp := range sv.QubitProbabilities() {
		assert.InDelta(t, 0.5, qp.Prob0, tol)
		assert.InDelta(t, 0.5, qp.Prob1, tol)
	}
}

func TestCXIsLittleEndian(t *testing.T) {
	c := circuit.NewN(2)
	c.AppendAt(gates.CX(), 0, 1)
	u := mustUnitary(t, c)

	// |01> (qubit 0 set) maps to |11>.
	assert.Equal(t, complex128(1), u.At(3, 1))
	assert.Equal(t, complex128(1), u.At(1, 3))
	assert.Equal(t, complex128(1), u.At(0, 0))
	assert.Equal(t, complex128(1), u.At(2, 2))
}

func TestControlledMatrixOpenState(t *testing.T) {
	x := FromMat2(gates.Mat2{{0, 1}, {1, 0}})
	m := ControlledMatrix(x, 2, 0b01)

	// Active only when control 0 is 1 and control 1 is 0.
	assert.Equal(t, complex128(1), m.At(0b101, 0b001))
	assert.Equal(t, complex128(1), m.At(0b001, 0b101))
	assert.Equal(t, complex128(1), m.At(0b111, 0b111))
	assert.Equal(t, complex128(1), m.At(0b000, 0b000))
	assert.Equal(t, 3, m.NumQubits())
}

func TestOperationMatrixMatchesControlledMatrix(t *testing.T) {
	op := gates.Controlled(gates.RY(circuit.Value(0.7)), 2).WithCtrlState(2)
	got, err := OperationMatrix(op)
	require.NoError(t, err)

	base, err := OperationMatrix(gates.RY(circuit.Value(0.7)))
	require.NoError(t, err)
	assert.True(t, Equal(ControlledMatrix(base, 2, 2), got, tol))
}

func TestRunMultiQubitTargets(t *testing.T) {
	// swap is applied through its definition.
	c := circuit.NewN(3)
	c.AppendAt(gates.Swap(), 0, 2)
	sv := NewBasisState(3, 0b001)
	require.NoError(t, sv.Run(c))
	assert.InDelta(t, 1, real(sv.Amplitudes[0b100]), tol)

	// cswap with control on qubit 1.
	c = circuit.NewN(3)
	c.AppendAt(gates.CSwap(), 1, 0, 2)
	sv = NewBasisState(3, 0b011)
	require.NoError(t, sv.Run(c))
	assert.InDelta(t, 1, real(sv.Amplitudes[0b110]), tol)
}

func TestGlobalPhase(t *testing.T) {
	c := circuit.NewN(1)
	c.AddGlobalPhase(circuit.Value(math.Pi / 2))
	u := mustUnitary(t, c)
	assert.True(t, Equal(u, Matrix{Dim: 2, Data: []complex128{1i, 0, 0, 1i}}, tol))
	assert.True(t, EqualUpToPhase(u, Identity(2), tol))
	assert.False(t, Equal(u, Identity(2), tol))
}

func TestEqualUpToPhaseRejectsDifferentMatrices(t *testing.T) {
	z := FromMat2(gates.Mat2{{1, 0}, {0, -1}})
	assert.False(t, EqualUpToPhase(z, Identity(2), tol))
	assert.False(t, EqualUpToPhase(z, Identity(4), tol))
}

func TestErrors(t *testing.T) {
	c := circuit.NewN(1)
	c.AppendAt(gates.RZ(circuit.Symbol("theta")), 0)
	_, err := Unitary(c)
	assert.ErrorIs(t, err, ErrUnboundParameter)

	c = circuit.NewN(1)
	c.AppendAt(circuit.Operation{Name: "mystery", NumQubits: 1}, 0)
	_, err = Unitary(c)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestCheckControlled(t *testing.T) {
	def := circuit.NewN(2)
	def.AppendAt(gates.CX(), 0, 1)
	result := circuit.Operation{Name: "cx", NumQubits: 2}.WithDefinition(def)

	require.NoError(t, CheckControlled(gates.X(), result, 1, 1, tol))
	assert.ErrorIs(t, CheckControlled(gates.X(), result, 1, 0, tol), ErrMismatch)
	assert.ErrorIs(t, CheckControlled(gates.Z(), result, 1, 1, tol), ErrMismatch)

	phased := circuit.NewN(2)
	phased.AppendAt(gates.CX(), 0, 1)
	phased.AddGlobalPhase(circuit.Value(0.3))
	err := CheckControlled(gates.X(), circuit.Operation{Name: "cx", NumQubits: 2}.WithDefinition(phased), 1, 1, tol)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.ErrorContains(t, err, "global phase")
	err = CheckControlled(gates.Z(), result, 1, 1, tol)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "global phase")

	assert.ErrorIs(t, CheckControlled(gates.X(), gates.X(), 1, 1, tol), ErrUnknownOperation)
	assert.ErrorIs(t, CheckControlled(gates.RX(circuit.Symbol("a")), result, 1, 1, tol), ErrUnboundParameter)
}

func TestTargetResponse(t *testing.T) {
	def := circuit.NewN(3)
	def.AppendAt(gates.CCX(), 0, 1, 2)
	// Open on control 1: active when the controls hold 0b01.
	result := circuit.Operation{Name: "ccx", NumQubits: 3, Control: &circuit.Control{
		NumCtrlQubits: 2, CtrlState: 0b01, Base: gates.X(),
	}}.WithDefinition(def)

	active, err := TargetResponse(result, 2, 0b01)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.InDelta(t, 1, active[0].Prob1, tol)

	for _, pattern := range []int{0b00, 0b10, 0b11} {
		idle, err := TargetResponse(result, 2, pattern)
		require.NoError(t, err)
		assert.InDelta(t, 1, idle[0].Prob0, tol, "pattern %02b", pattern)
	}

	_, err = TargetResponse(result, 2, 4)
	assert.ErrorIs(t, err, ErrControlPattern)
	_, err = TargetResponse(result, 3, 0)
	assert.ErrorIs(t, err, ErrControlPattern)
	_, err = TargetResponse(gates.X(), 1, 1)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}
