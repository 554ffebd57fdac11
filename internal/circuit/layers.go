package circuit

// Layers assigns every instruction to the earliest step after the last
// instruction touching any wire in its span, and returns instruction indices
// grouped by step. Spanning the wires between the lowest and highest qubit
// keeps the vertical connector of a multi-qubit gate clear of other gates in
// the same step.
func (c *Circuit) Layers() [][]int {
	lastStep := make([]int, len(c.qubits))
	for i := range lastStep {
		lastStep[i] = -1
	}

	var layers [][]int
	for i, inst := range c.data {
		lo, hi := c.span(inst)
		step := 0
		for q := lo; q <= hi; q++ {
			step = max(step, lastStep[q]+1)
		}
		for q := lo; q <= hi; q++ {
			lastStep[q] = step
		}
		for len(layers) <= step {
			layers = append(layers, nil)
		}
		layers[step] = append(layers[step], i)
	}
	return layers
}

// Depth returns the number of layers.
func (c *Circuit) Depth() int {
	return len(c.Layers())
}

func (c *Circuit) span(inst Instruction) (lo, hi int) {
	lo, hi = len(c.qubits), -1
	for _, q := range inst.Qubits {
		idx := c.index[q]
		lo, hi = min(lo, idx), max(hi, idx)
	}
	return lo, hi
}
