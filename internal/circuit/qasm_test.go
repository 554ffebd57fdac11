package circuit

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQASMMultipleRegisters(t *testing.T) {
	qasm := `OPENQASM 2.0;
include "qelib1.inc";

qreg ctrl[2];
qreg tgt[1];
creg c[1];

h ctrl[0];
ccx ctrl[0], ctrl[1], tgt[0]; // toffoli
u3(pi/2, -pi/2, theta) tgt[0];`

	c, err := ParseQASM(qasm, nil)
	require.NoError(t, err)
	require.Equal(t, 3, c.NumQubits())
	require.Equal(t, 3, c.Len())

	ccx := c.Data()[1]
	assert.Equal(t, "ccx", ccx.Op.Name)
	assert.Equal(t, 3, ccx.Op.NumQubits)
	assert.Equal(t, []int{0, 1, 2}, c.Indices(ccx.Qubits))

	u3 := c.Data()[2].Op
	require.Len(t, u3.Params, 3)
	assert.True(t, u3.Params[0].Equals(math.Pi/2))
	assert.True(t, u3.Params[1].Equals(-math.Pi/2))
	assert.Equal(t, []string{"theta"}, u3.Params[2].Symbols())
}

func TestParseQASMRejectsNonUnitary(t *testing.T) {
	for _, stmt := range []string{
		"measure q[0] -> c[0];",
		"reset q[0];",
		"barrier q[0], q[1];",
		"if (c==1) x q[0];",
	} {
		qasm := "qreg q[2];\ncreg c[2];\n" + stmt
		_, err := ParseQASM(qasm, nil)
		assert.ErrorIs(t, err, ErrNotUnitary, stmt)
	}
}

func TestParseQASMSyntaxErrors(t *testing.T) {
	tests := map[string]string{
		"unknown register":  "qreg q[1];\nh r[0];",
		"out of range":      "qreg q[1];\nh q[1];",
		"repeated qubit":    "qreg q[2];\ncx q[0], q[0];",
		"bad parameter":     "qreg q[1];\nrz(2**pi) q[0];",
		"duplicate reg":     "qreg q[1];\nqreg q[2];",
		"missing arguments": "qreg q[1];\nh;",
		"huge register":     "qreg q[99999999999999999999];\nh q[0];",
		"empty register":    "qreg q[0];",
		"too many qubits":   "qreg a[40];\nqreg b[40];",
		"huge index":        "qreg q[1];\nh q[99999999999999999999];",
	}
	for name, qasm := range tests {
		_, err := ParseQASM(qasm, nil)
		assert.ErrorIs(t, err, ErrSyntax, name)
	}
}

func TestParseQASMResolver(t *testing.T) {
	resolve := func(name string, params []Param, n int) (Operation, error) {
		if name != "h" {
			return Operation{}, fmt.Errorf("gate %q: %w", name, ErrSyntax)
		}
		return Operation{Name: "h", NumQubits: 1, Label: "resolved"}, nil
	}

	c, err := ParseQASM("qreg q[1];\nh q[0];", resolve)
	require.NoError(t, err)
	assert.Equal(t, "resolved", c.Data()[0].Op.Label)

	_, err = ParseQASM("qreg q[1];\nfoo q[0];", resolve)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestQASMRoundTrip(t *testing.T) {
	c := New(NewRegister("c", 1), NewRegister("t", 2))
	c.AppendAt(Operation{Name: "rx", NumQubits: 1, Params: Values(math.Pi / 2)}, 1)
	c.AppendAt(Operation{Name: "ry", NumQubits: 1, Params: Values(3 * math.Pi / 4)}, 2)
	c.AppendAt(Operation{Name: "rz", NumQubits: 1, Params: Values(-math.Pi)}, 1)
	c.AppendAt(Operation{Name: "crx", NumQubits: 2, Params: Values(math.Pi / 4)}, 0, 2)
	c.AppendAt(Operation{Name: "p", NumQubits: 1, Params: []Param{Symbol("lam").Scale(0.5)}}, 0)
	c.AddGlobalPhase(Value(math.Pi / 2))

	qasm := c.ToQASM()
	for _, want := range []string{
		"qreg c[1];",
		"qreg t[2];",
		"rx(pi/2) t[0];",
		"ry(3*pi/4) t[1];",
		"rz(-pi) t[0];",
		"crx(pi/4) c[0], t[1];",
		"p(0.5*lam) c[0];",
		"// global phase: pi/2",
	} {
		assert.True(t, strings.Contains(qasm, want), "expected %q in QASM:\n%s", want, qasm)
	}

	back, err := ParseQASM(qasm, nil)
	require.NoError(t, err)
	assert.Equal(t, c.Qubits(), back.Qubits())
	require.Equal(t, c.Len(), back.Len())
	for i, inst := range c.Data() {
		got := back.Data()[i]
		assert.Equal(t, inst.Op.Name, got.Op.Name)
		assert.Equal(t, inst.Qubits, got.Qubits)
		for j, p := range inst.Op.Params {
			assert.Equal(t, p.String(), got.Op.Params[j].String())
		}
	}
	phase, ok := back.GlobalPhase.Float()
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2, phase, 1e-12)
}

func TestToQASMOpenControlName(t *testing.T) {
	op := Operation{
		Name:      "cx",
		NumQubits: 2,
		Control:   &Control{NumCtrlQubits: 1, CtrlState: 0, Base: Operation{Name: "x", NumQubits: 1}},
	}
	c := NewN(2)
	c.AppendAt(op, 0, 1)
	assert.Contains(t, c.ToQASM(), "cx_o0 q[0], q[1];")
}
