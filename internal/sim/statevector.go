package sim

import (
	"math/cmplx"

	"qctrl/internal/circuit"
)

type Complex = complex128

// StateVector holds 2^NumQubits amplitudes. Basis index bit i is qubit i.
type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

// NewBasisState returns the computational basis state |index>.
func NewBasisState(numQubits, index int) *StateVector {
	amps := make([]Complex, 1<<numQubits)
	amps[index] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// step is an instruction reduced to a matrix acting on target qubits, gated
// by control qubits that must hold ctrlState.
type step struct {
	ctrls     []int
	ctrlState int
	targets   []int
	m         Matrix
}

func compileOp(op circuit.Operation, qubits []int) (step, error) {
	if op.Control != nil {
		k := op.Control.NumCtrlQubits
		base, err := OperationMatrix(op.Control.Base)
		if err != nil {
			return step{}, err
		}
		return step{ctrls: qubits[:k], ctrlState: op.Control.CtrlState, targets: qubits[k:], m: base}, nil
	}
	m, err := OperationMatrix(op)
	if err != nil {
		return step{}, err
	}
	return step{targets: qubits, m: m}, nil
}

func compile(c *circuit.Circuit) ([]step, Complex, error) {
	steps := make([]step, 0, c.Len())
	for _, inst := range c.Data() {
		st, err := compileOp(inst.Op, c.Indices(inst.Qubits))
		if err != nil {
			return nil, 0, err
		}
		steps = append(steps, st)
	}
	phase, ok := c.GlobalPhase.Float()
	if !ok {
		return nil, 0, ErrUnboundParameter
	}
	return steps, cmplx.Exp(complex(0, phase)), nil
}

// Run applies every instruction of c in order, then its global phase.
func (s *StateVector) Run(c *circuit.Circuit) error {
	steps, phase, err := compile(c)
	if err != nil {
		return err
	}
	s.runSteps(steps, phase)
	return nil
}

func (s *StateVector) runSteps(steps []step, phase Complex) {
	for _, st := range steps {
		s.applyStep(st)
	}
	if phase != 1 {
		for i := range s.Amplitudes {
			s.Amplitudes[i] *= phase
		}
	}
}

func (s *StateVector) applyStep(st step) {
	ctrlMask, ctrlWant := 0, 0
	for i, q := range st.ctrls {
		ctrlMask |= 1 << q
		if st.ctrlState>>i&1 == 1 {
			ctrlWant |= 1 << q
		}
	}
	if len(st.targets) == 1 {
		s.apply1(st.targets[0], st.m, ctrlMask, ctrlWant)
		return
	}
	s.applyN(st.targets, st.m, ctrlMask, ctrlWant)
}

// apply1 applies a 2x2 matrix to qubit q on every basis pair whose control
// bits match.
func (s *StateVector) apply1(q int, m Matrix, ctrlMask, ctrlWant int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	m00, m01, m10, m11 := m.At(0, 0), m.At(0, 1), m.At(1, 0), m.At(1, 1)
	for i := 0; i < n; i++ {
		if i&bit != 0 || i&ctrlMask != ctrlWant {
			continue
		}
		j := i | bit
		a, b := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = m00*a + m01*b
		s.Amplitudes[j] = m10*a + m11*b
	}
}

// applyN applies a 2^k x 2^k matrix to the k target qubits.
func (s *StateVector) applyN(targets []int, m Matrix, ctrlMask, ctrlWant int) {
	n := len(s.Amplitudes)
	tMask := 0
	for _, q := range targets {
		tMask |= 1 << q
	}
	// offset[l] is the amplitude offset of local index l.
	offset := make([]int, m.Dim)
	for l := range m.Dim {
		for bi, q := range targets {
			if l>>bi&1 == 1 {
				offset[l] |= 1 << q
			}
		}
	}
	in := make([]Complex, m.Dim)
	for i := 0; i < n; i++ {
		if i&tMask != 0 || i&ctrlMask != ctrlWant {
			continue
		}
		for l := range m.Dim {
			in[l] = s.Amplitudes[i|offset[l]]
		}
		for r := range m.Dim {
			var acc Complex
			for c := range m.Dim {
				acc += m.At(r, c) * in[c]
			}
			s.Amplitudes[i|offset[r]] = acc
		}
	}
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal distribution of each qubit.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, p := range s.Probabilities() {
		for q := range probs {
			if i>>q&1 == 1 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// Probabilities returns the probability of every basis state.
func (s *StateVector) Probabilities() []float64 {
	out := make([]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		out[i] = real(amp * cmplx.Conj(amp))
	}
	return out
}
