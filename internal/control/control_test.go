package control

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qctrl/internal/circuit"
	"qctrl/internal/gates"
	"qctrl/internal/sim"
	"qctrl/internal/unroll"
)

const tol = 1e-9

var v = circuit.Value

func matrixOf(t *testing.T, op circuit.Operation) sim.Matrix {
	t.Helper()
	m, err := sim.OperationMatrix(op)
	require.NoError(t, err)
	return m
}

func definitionMatrix(t *testing.T, op circuit.Operation) sim.Matrix {
	t.Helper()
	def := op.Definition()
	require.NotNil(t, def, "%s has no definition", op.QASMName())
	m, err := sim.Unitary(def)
	require.NoError(t, err)
	return m
}

// checkControlled verifies that op controlled on n lines in every possible
// state applies op exactly when the controls match and is identity otherwise.
func checkControlled(t *testing.T, op circuit.Operation, n int) {
	t.Helper()
	base := matrixOf(t, op)
	for state := range 1 << n {
		got, err := Control(op, n, WithCtrlState(StateInt(state)))
		require.NoError(t, err)
		want := sim.ControlledMatrix(base, n, state)
		assert.True(t, sim.Equal(want, definitionMatrix(t, got), tol),
			"%s n=%d state=%s", op.QASMName(), n, Encode(state, n))
	}
}

func TestBasisGatesAllControlStates(t *testing.T) {
	basisGates := []circuit.Operation{
		gates.X(), gates.Y(), gates.Z(), gates.H(), gates.SX(), gates.SXdg(),
		gates.P(v(0.4)), gates.RX(v(0.7)), gates.RY(v(-0.3)), gates.RZ(v(1.3)),
		gates.U(v(math.Pi), v(0), v(math.Pi)),
		gates.U(v(0.5), v(-math.Pi/2), v(math.Pi/2)),
		gates.U(v(0.5), v(0), v(0)),
		gates.U(v(0), v(0), v(0.9)),
		gates.U(v(0.3), v(0.6), v(-1.1)),
		gates.CX(), gates.CZ(),
	}
	for _, g := range basisGates {
		for n := 1; n <= 3; n++ {
			t.Run(fmt.Sprintf("%s/%d", g, n), func(t *testing.T) {
				checkControlled(t, g, n)
			})
		}
	}
}

func TestUnrolledGatesAllControlStates(t *testing.T) {
	m := gates.Mat2{{0.6, 0.8i}, {0.8i, 0.6}}
	unitary, err := gates.Unitary1Q(m)
	require.NoError(t, err)

	def := circuit.NewN(2)
	def.AppendAt(gates.H(), 1)
	def.AppendAt(gates.CRZ(v(0.8)), 1, 0)
	def.AddGlobalPhase(v(0.3))
	custom := circuit.Operation{Name: "custom", NumQubits: 2}.WithDefinition(def)

	ops := []circuit.Operation{
		gates.S(), gates.Tdg(), gates.SY(), gates.U2(v(0.1), v(0.2)),
		gates.Swap(), gates.ISwap(), gates.RZZ(v(0.5)), gates.CH(),
		gates.CU(v(0.3), v(0.2), v(0.1), v(0.5), 1),
		unitary, custom,
	}
	for _, g := range ops {
		for n := 1; n <= 2; n++ {
			t.Run(fmt.Sprintf("%s/%d", g.QASMName(), n), func(t *testing.T) {
				checkControlled(t, g, n)
			})
		}
	}
}

func TestOpenControlledInput(t *testing.T) {
	src := gates.CX().WithCtrlState(0)
	got, err := Control(src, 2, WithCtrlState(StateBits("10")))
	require.NoError(t, err)

	assert.Equal(t, 0, src.Control.CtrlState, "input is not modified")
	assert.Equal(t, "c3x", got.Name)
	assert.Equal(t, 3, got.Control.NumCtrlQubits)
	assert.Equal(t, 0b010, got.Control.CtrlState)
	assert.Equal(t, "x", got.Control.Base.Name)

	want := sim.ControlledMatrix(matrixOf(t, src), 2, 0b10)
	assert.True(t, sim.Equal(want, definitionMatrix(t, got), tol))
	assert.True(t, sim.Equal(matrixOf(t, got), definitionMatrix(t, got), tol))
}

func TestNestedControlComposition(t *testing.T) {
	ops := []circuit.Operation{gates.H(), gates.RY(v(0.9)), gates.Swap()}
	for _, g := range ops {
		for a := 1; a <= 2; a++ {
			for b := 1; b <= 2; b++ {
				for sa := range 1 << a {
					for sb := range 1 << b {
						inner, err := Control(g, a, WithCtrlState(StateInt(sa)))
						require.NoError(t, err)
						nested, err := Control(inner, b, WithCtrlState(StateInt(sb)))
						require.NoError(t, err)
						single, err := Control(g, a+b, WithCtrlState(StateInt(sa<<b|sb)))
						require.NoError(t, err)

						assert.Equal(t, single.Name, nested.Name)
						assert.Equal(t, single.Control.NumCtrlQubits, nested.Control.NumCtrlQubits)
						assert.Equal(t, single.Control.CtrlState, nested.Control.CtrlState)
						assert.Equal(t, single.Control.Base.Name, nested.Control.Base.Name)
						assert.True(t, sim.Equal(definitionMatrix(t, single), definitionMatrix(t, nested), tol),
							"%s a=%d b=%d sa=%d sb=%d", g.Name, a, b, sa, sb)
					}
				}
			}
		}
	}
}

func TestNaming(t *testing.T) {
	for _, g := range []circuit.Operation{gates.X(), gates.H(), gates.RZ(v(1)), gates.Swap()} {
		for n, prefix := range map[int]string{1: "c", 2: "cc", 3: "c3", 4: "c4"} {
			got, err := Control(g, n)
			require.NoError(t, err)
			assert.Equal(t, prefix+g.Name, got.Name)
			assert.Equal(t, n+g.NumQubits, got.NumQubits)
			assert.Equal(t, g.Params, got.Params)
		}
	}
}

func TestScenarioToffoli(t *testing.T) {
	got, err := Control(gates.X(), 2)
	require.NoError(t, err)
	assert.Equal(t, "ccx", got.Name)

	toffoli := sim.Identity(8)
	toffoli.Set(3, 3, 0)
	toffoli.Set(7, 7, 0)
	toffoli.Set(3, 7, 1)
	toffoli.Set(7, 3, 1)
	assert.True(t, sim.EqualUpToPhase(toffoli, definitionMatrix(t, got), tol))

	flat, phase, err := unroll.Unroll(got, gates.BasisSet())
	require.NoError(t, err)
	flat.AddGlobalPhase(phase)
	u, err := sim.Unitary(flat)
	require.NoError(t, err)
	assert.True(t, sim.EqualUpToPhase(toffoli, u, tol))
}

func TestScenarioControlledZ(t *testing.T) {
	got, err := Control(gates.Z(), 1)
	require.NoError(t, err)
	assert.Equal(t, "cz", got.Name)

	want := sim.Identity(4)
	want.Set(3, 3, -1)
	assert.True(t, sim.Equal(want, definitionMatrix(t, got), tol))
}

func TestScenarioControlledU(t *testing.T) {
	u := gates.U(v(math.Pi), v(0), v(math.Pi))
	got, err := Control(u, 1)
	require.NoError(t, err)
	assert.Equal(t, "cu", got.Name)

	um := matrixOf(t, u)
	want := sim.Identity(4)
	// Control is qubit 0, so the target block sits on odd indices.
	for r := range 2 {
		for c := range 2 {
			want.Set(1|r<<1, 1|c<<1, um.At(r, c))
		}
	}
	assert.True(t, sim.Equal(want, definitionMatrix(t, got), tol))

	def := got.Definition()
	require.Equal(t, 1, def.Len())
	assert.Equal(t, "cu", def.Data()[0].Op.Name)
}

func TestScenarioOracleDecomposition(t *testing.T) {
	op := circuit.Operation{Name: "pair", NumQubits: 2}
	var seen circuit.Operation
	var seenBasis map[string]bool
	oracle := OracleFunc(func(g circuit.Operation, basis map[string]bool) (*circuit.Circuit, circuit.Param, error) {
		seen, seenBasis = g, basis
		flat := circuit.NewN(2)
		flat.AppendAt(gates.X(), 1)
		flat.AppendAt(gates.RZ(v(0.25)), 0)
		return flat, circuit.Param{}, nil
	})

	for n := 1; n <= 3; n++ {
		got, err := New(WithOracle(oracle)).Control(op, n)
		require.NoError(t, err)
		assert.Equal(t, "pair", seen.Name)
		assert.Equal(t, gates.BasisSet(), seenBasis)

		def := got.Definition()
		require.Equal(t, 2, def.Len(), "one controlled block per unrolled instruction")
		ctrls := make([]int, n)
		for i := range ctrls {
			ctrls[i] = i
		}
		first, second := def.Data()[0], def.Data()[1]
		assert.Equal(t, gates.ControlledName(n, "x"), first.Op.Name)
		assert.Equal(t, append(ctrls, n+1), def.Indices(first.Qubits))
		assert.Equal(t, gates.ControlledName(n, "rz"), second.Op.Name)
		assert.Equal(t, append(ctrls, n), def.Indices(second.Qubits))
	}
}

func TestGlobalPhaseBecomesControlledPhase(t *testing.T) {
	phase := 0.7
	oracle := OracleFunc(func(g circuit.Operation, _ map[string]bool) (*circuit.Circuit, circuit.Param, error) {
		flat := circuit.NewN(1)
		flat.AppendAt(gates.X(), 0)
		return flat, v(phase), nil
	})
	op := circuit.Operation{Name: "phased", NumQubits: 1}

	one, err := New(WithOracle(oracle)).Control(op, 1)
	require.NoError(t, err)
	last := one.Definition().Data()[1]
	assert.Equal(t, "p", last.Op.Name)
	assert.True(t, last.Op.Param(0).Equals(phase))
	assert.Equal(t, []int{0}, one.Definition().Indices(last.Qubits))

	three, err := New(WithOracle(oracle)).Control(op, 3)
	require.NoError(t, err)
	last = three.Definition().Data()[1]
	assert.Equal(t, "ccp", last.Op.Name)
	assert.Equal(t, []int{0, 1, 2}, three.Definition().Indices(last.Qubits), "first n-1 controls gate a phase on the last")
}

func TestErrors(t *testing.T) {
	_, err := Control(gates.X(), 2, WithCtrlState(StateBits("101")))
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Control(gates.X(), 2, WithCtrlState(StateInt(8)))
	assert.ErrorIs(t, err, ErrInvalidControlState)

	_, err = Control(gates.X(), 2, WithCtrlState(StateInt(-1)))
	assert.ErrorIs(t, err, ErrInvalidControlState)

	_, err = Control(gates.X(), 2, WithCtrlState(StateBits("1x")))
	assert.ErrorIs(t, err, ErrInvalidControlState)

	_, err = Control(gates.X(), 0)
	assert.ErrorIs(t, err, ErrInvalidNumCtrlQubits)

	_, err = Control(gates.Controlled(gates.X(), MaxCtrlQubits), 1)
	assert.ErrorIs(t, err, ErrInvalidNumCtrlQubits)

	_, err = Control(circuit.Operation{Name: "mystery", NumQubits: 1}, 1)
	assert.ErrorIs(t, err, unroll.ErrNoTranslationPath)
	assert.ErrorContains(t, err, "mystery")

	failing := OracleFunc(func(circuit.Operation, map[string]bool) (*circuit.Circuit, circuit.Param, error) {
		flat := circuit.NewN(1)
		flat.AppendAt(gates.S(), 0)
		return flat, circuit.Param{}, nil
	})
	_, err = New(WithOracle(failing)).Control(gates.T(), 1)
	assert.ErrorIs(t, err, ErrUnsupportedBasisGate)
}

func TestLabels(t *testing.T) {
	got, err := Control(gates.H(), 1, WithLabel("ctrl-h"))
	require.NoError(t, err)
	assert.Equal(t, "ctrl-h", got.Label)
	assert.Empty(t, got.Control.Base.Label)

	labelled := gates.RX(v(0.5)).WithLabel("drive")
	got, err = Control(labelled, 2)
	require.NoError(t, err)
	assert.Empty(t, got.Label)
	assert.Equal(t, "drive", got.Control.Base.Label)

	inner, err := Control(gates.X(), 1, WithLabel("outer-cx"))
	require.NoError(t, err)
	got, err = Control(inner, 1)
	require.NoError(t, err)
	assert.Equal(t, "outer-cx", got.Control.Base.Label)
	assert.Equal(t, "x", got.Control.Base.Name)
}

func TestExactParameterBranches(t *testing.T) {
	count := func(op circuit.Operation) int {
		got, err := Control(op, 2)
		require.NoError(t, err)
		return got.Definition().Len()
	}
	assert.Equal(t, 1, count(gates.U(v(0.5), v(0), v(0))), "mcry fast path")
	assert.Equal(t, 1, count(gates.U(v(0.5), v(-math.Pi/2), v(math.Pi/2))), "mcrx fast path")
	assert.Equal(t, 1, count(gates.U(v(0), v(0), v(0.5))), "mcphase fast path")
	assert.Equal(t, 4, count(gates.U(v(0.5), v(1e-17), v(0))), "near-zero is not zero")
	assert.Equal(t, 4, count(gates.U(v(0.5), circuit.Symbol("phi"), v(0))), "symbolic phi fails every comparison")

	// Symbols in slots that are not compared keep the fast paths.
	got, err := Control(gates.U(circuit.Symbol("theta"), v(0), v(0)), 2)
	require.NoError(t, err)
	require.Equal(t, 1, got.Definition().Len())
	assert.Equal(t, "ccry", got.Definition().Data()[0].Op.QASMName())
	assert.Equal(t, 1, count(gates.U(v(0), v(0), circuit.Symbol("lam"))), "mcphase with symbolic lambda")
}

func TestSymbolicParametersBindLater(t *testing.T) {
	got, err := Control(gates.RZ(circuit.Symbol("theta")), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"theta"}, got.Params[0].Symbols())

	_, err = sim.Unitary(got.Definition())
	assert.ErrorIs(t, err, sim.ErrUnboundParameter)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	_, err := New(WithLogger(logger)).Control(gates.SY(), 2)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "unrolled dispatch")
	assert.Contains(t, buf.String(), "controlled global phase")

	buf.Reset()
	_, err = New(WithLogger(logger)).Control(gates.X(), 1)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "basis dispatch")
}

func TestApplyBasicRejectsNonBasisGate(t *testing.T) {
	qc := circuit.NewN(2)
	err := applyBasic(qc, gates.Swap(), qc.Qubits()[:1], qc.Qubits()[1:])
	assert.ErrorIs(t, err, ErrUnsupportedBasisGate)
}
