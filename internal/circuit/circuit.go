package circuit

import (
	"fmt"
	"slices"
)

// Qubit identifies one wire by register name and index.
type Qubit struct {
	Register string
	Index    int
}

func (q Qubit) String() string {
	return fmt.Sprintf("%s[%d]", q.Register, q.Index)
}

// Register is a named ordered sequence of qubits.
type Register struct {
	Name string
	Size int
}

// NewRegister returns a register of size qubits.
func NewRegister(name string, size int) Register {
	return Register{Name: name, Size: size}
}

// At returns the i-th qubit of the register.
func (r Register) At(i int) Qubit {
	if i < 0 || i >= r.Size {
		panic(fmt.Sprintf("circuit: qubit %d out of range for register %s[%d]", i, r.Name, r.Size))
	}
	return Qubit{Register: r.Name, Index: i}
}

// Qubits returns every qubit of the register in order.
func (r Register) Qubits() []Qubit {
	qs := make([]Qubit, r.Size)
	for i := range r.Size {
		qs[i] = Qubit{Register: r.Name, Index: i}
	}
	return qs
}

// Instruction is one operation applied to an ordered list of qubits.
type Instruction struct {
	Op     Operation
	Qubits []Qubit
}

// Circuit is an ordered instruction list over one or more registers plus a
// scalar global phase.
type Circuit struct {
	GlobalPhase Param

	regs   []Register
	qubits []Qubit
	index  map[Qubit]int
	data   []Instruction
}

// New returns an empty circuit over regs. Qubit positions follow register
// order, then index order within each register.
func New(regs ...Register) *Circuit {
	c := &Circuit{index: make(map[Qubit]int)}
	for _, r := range regs {
		c.AddRegister(r)
	}
	return c
}

// NewN returns an empty circuit with a single register "q" of n qubits.
func NewN(n int) *Circuit {
	return New(NewRegister("q", n))
}

// AddRegister appends a register. Panics if the name is already taken.
func (c *Circuit) AddRegister(r Register) {
	for _, existing := range c.regs {
		if existing.Name == r.Name {
			panic(fmt.Sprintf("circuit: duplicate register %q", r.Name))
		}
	}
	c.regs = append(c.regs, r)
	for _, q := range r.Qubits() {
		c.index[q] = len(c.qubits)
		c.qubits = append(c.qubits, q)
	}
}

// Qubits returns every qubit in positional order.
func (c *Circuit) Qubits() []Qubit {
	return slices.Clone(c.qubits)
}

// Qubit returns the qubit at position i.
func (c *Circuit) Qubit(i int) Qubit {
	return c.qubits[i]
}

// NumQubits returns the number of qubits across all registers.
func (c *Circuit) NumQubits() int {
	return len(c.qubits)
}

// Index returns the positional index of q, or -1 if q is not in the circuit.
func (c *Circuit) Index(q Qubit) int {
	if i, ok := c.index[q]; ok {
		return i
	}
	return -1
}

// Indices maps qubits to their positional indices.
func (c *Circuit) Indices(qs []Qubit) []int {
	out := make([]int, len(qs))
	for i, q := range qs {
		out[i] = c.Index(q)
	}
	return out
}

// Data returns the instructions in insertion order.
func (c *Circuit) Data() []Instruction {
	return c.data
}

// Len returns the number of instructions.
func (c *Circuit) Len() int {
	return len(c.data)
}

// Append adds op applied to qubits. It panics when the qubit count does not
// match the operation's arity, or when a qubit is unknown or repeated.
func (c *Circuit) Append(op Operation, qubits ...Qubit) {
	if len(qubits) != op.NumQubits {
		panic(fmt.Sprintf("circuit: %s expects %d qubits, got %d", op.Name, op.NumQubits, len(qubits)))
	}
	for i, q := range qubits {
		if _, ok := c.index[q]; !ok {
			panic(fmt.Sprintf("circuit: %s applied to unknown qubit %s", op.Name, q))
		}
		if slices.Contains(qubits[:i], q) {
			panic(fmt.Sprintf("circuit: %s applied twice to qubit %s", op.Name, q))
		}
	}
	c.data = append(c.data, Instruction{Op: op, Qubits: slices.Clone(qubits)})
}

// AppendAt adds op applied to the qubits at the given positions.
func (c *Circuit) AppendAt(op Operation, indices ...int) {
	qs := make([]Qubit, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(c.qubits) {
			panic(fmt.Sprintf("circuit: %s applied to position %d of %d", op.Name, idx, len(c.qubits)))
		}
		qs[i] = c.qubits[idx]
	}
	c.Append(op, qs...)
}

// AddGlobalPhase accumulates phase into the circuit's global phase.
func (c *Circuit) AddGlobalPhase(phase Param) {
	c.GlobalPhase = c.GlobalPhase.Add(phase)
}

// emptyCopy returns a circuit over the same registers with no instructions.
func (c *Circuit) emptyCopy() *Circuit {
	return New(c.regs...)
}

// CountOps returns the number of instructions per operation name.
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, inst := range c.data {
		counts[inst.Op.QASMName()]++
	}
	return counts
}
