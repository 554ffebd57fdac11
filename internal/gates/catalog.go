package gates

import (
	"math"

	"qctrl/internal/circuit"
)

// Definition returns the definition of op: the one attached to it, or the
// catalog decomposition of a composite standard gate or a multi-controlled
// primitive. It returns nil for basis gates and unknown operations. Open
// controls are expressed by X conjugation of the closed form.
func Definition(g circuit.Operation) *circuit.Circuit {
	if g.HasDefinition() {
		return g.Definition()
	}
	if g.Control == nil {
		return uncontrolled(g)
	}
	closed := controlledDef(g.Control.Base, g.Control.NumCtrlQubits)
	if closed == nil || !g.IsOpenControlled() {
		return closed
	}
	return circuit.WithOpenControls(closed, g.Control.NumCtrlQubits, g.Control.CtrlState)
}

func uncontrolled(g circuit.Operation) *circuit.Circuit {
	def := circuit.NewN(g.NumQubits)
	switch g.Name {
	case "id":
	case "s", "sdg", "t", "tdg":
		def.AppendAt(P(val(fixedAngles[g.Name])), 0)
	case "u1":
		def.AppendAt(P(g.Param(0)), 0)
	case "u2":
		def.AppendAt(U(val(math.Pi/2), g.Param(0), g.Param(1)), 0)
	case "u3":
		def.AppendAt(U(g.Param(0), g.Param(1), g.Param(2)), 0)
	case "u":
		// Only the four-parameter form carried by cu has a definition.
		if len(g.Params) != 4 {
			return nil
		}
		def.AppendAt(U(g.Param(0), g.Param(1), g.Param(2)), 0)
		def.AddGlobalPhase(g.Param(3))
	case "sy":
		def.AppendAt(RY(val(math.Pi/2)), 0)
		def.AddGlobalPhase(val(math.Pi / 4))
	case "sydg":
		def.AppendAt(RY(val(-math.Pi/2)), 0)
		def.AddGlobalPhase(val(-math.Pi / 4))
	case "swap":
		def.AppendAt(CX(), 0, 1)
		def.AppendAt(CX(), 1, 0)
		def.AppendAt(CX(), 0, 1)
	case "dcx":
		def.AppendAt(CX(), 0, 1)
		def.AppendAt(CX(), 1, 0)
	case "iswap":
		def.AppendAt(S(), 0)
		def.AppendAt(S(), 1)
		def.AppendAt(H(), 0)
		def.AppendAt(CX(), 0, 1)
		def.AppendAt(CX(), 1, 0)
		def.AppendAt(H(), 1)
	case "rzz":
		def.AppendAt(CX(), 0, 1)
		def.AppendAt(RZ(g.Param(0)), 1)
		def.AppendAt(CX(), 0, 1)
	case "rxx":
		def.AppendAt(H(), 0)
		def.AppendAt(H(), 1)
		def.AppendAt(CX(), 0, 1)
		def.AppendAt(RZ(g.Param(0)), 1)
		def.AppendAt(CX(), 0, 1)
		def.AppendAt(H(), 0)
		def.AppendAt(H(), 1)
	default:
		return nil
	}
	return def
}

// controlledDef returns the closed k-controlled definition of base. Control
// qubits occupy positions 0..k-1 and base's qubits follow.
func controlledDef(base circuit.Operation, k int) *circuit.Circuit {
	def := circuit.NewN(k + base.NumQubits)
	ctrls := make([]int, k)
	for i := range ctrls {
		ctrls[i] = i
	}
	t := k
	on := func(g circuit.Operation, extra ...int) {
		def.AppendAt(g, append(append([]int{}, ctrls...), extra...)...)
	}

	switch base.Name {
	case "id":
	case "x":
		switch {
		case k == 1:
			return nil
		case k == 2:
			toffoli(def, 0, 1, 2)
		default:
			def.AppendAt(H(), t)
			on(MCPhase(val(math.Pi), k), t)
			def.AppendAt(H(), t)
		}
	case "z":
		def.AppendAt(H(), t)
		on(MCX(k), t)
		def.AppendAt(H(), t)
	case "y":
		def.AppendAt(Sdg(), t)
		on(MCX(k), t)
		def.AppendAt(S(), t)
	case "h":
		def.AppendAt(S(), t)
		def.AppendAt(H(), t)
		def.AppendAt(T(), t)
		on(MCX(k), t)
		def.AppendAt(Tdg(), t)
		def.AppendAt(H(), t)
		def.AppendAt(Sdg(), t)
	case "p", "u1":
		mcphase(def, base.Param(0), ctrls, t)
	case "s", "sdg", "t", "tdg":
		on(MCPhase(val(fixedAngles[base.Name]), k), t)
	case "rz":
		on(MCPhase(base.Param(0), k), t)
		ctrlPhase(def, base.Param(0).Scale(-0.5), ctrls)
	case "rx":
		def.AppendAt(H(), t)
		on(MCRZ(base.Param(0), k), t)
		def.AppendAt(H(), t)
	case "ry":
		def.AppendAt(Sdg(), t)
		def.AppendAt(H(), t)
		on(MCRZ(base.Param(0), k), t)
		def.AppendAt(H(), t)
		def.AppendAt(S(), t)
	case "sx", "sxdg":
		angle := math.Pi / 2
		if base.Name == "sxdg" {
			angle = 3 * math.Pi / 2
		}
		def.AppendAt(H(), t)
		on(MCPhase(val(angle), k), t)
		def.AppendAt(H(), t)
	case "sy", "sydg":
		angle := math.Pi / 2
		if base.Name == "sydg" {
			angle = -angle
		}
		on(MCRY(val(angle), k), t)
		ctrlPhase(def, val(angle/2), ctrls)
	case "u", "u2", "u3":
		theta, phi, lam, gamma := uAngles(base)
		controlledU(def, theta, phi, lam, gamma, ctrls, t)
	case "swap":
		def.AppendAt(CX(), t+1, t)
		on(MCX(k+1), t, t+1)
		def.AppendAt(CX(), t+1, t)
	default:
		inner := Definition(base)
		if inner == nil {
			return nil
		}
		for _, inst := range inner.Data() {
			targets := inner.Indices(inst.Qubits)
			for i := range targets {
				targets[i] += k
			}
			on(Controlled(inst.Op, k), targets...)
		}
		ctrlPhase(def, inner.GlobalPhase, ctrls)
	}
	return def
}

// uAngles returns theta, phi, lambda and gamma of a u-family gate.
func uAngles(g circuit.Operation) (theta, phi, lam, gamma param) {
	if g.Name == "u2" {
		return val(math.Pi / 2), g.Param(0), g.Param(1), param{}
	}
	return g.Param(0), g.Param(1), g.Param(2), g.Param(3)
}

// toffoli appends the standard 6-CNOT decomposition of ccx.
func toffoli(def *circuit.Circuit, a, b, c int) {
	def.AppendAt(H(), c)
	def.AppendAt(CX(), b, c)
	def.AppendAt(Tdg(), c)
	def.AppendAt(CX(), a, c)
	def.AppendAt(T(), c)
	def.AppendAt(CX(), b, c)
	def.AppendAt(Tdg(), c)
	def.AppendAt(CX(), a, c)
	def.AppendAt(T(), b)
	def.AppendAt(T(), c)
	def.AppendAt(H(), c)
	def.AppendAt(CX(), a, b)
	def.AppendAt(T(), a)
	def.AppendAt(Tdg(), b)
	def.AppendAt(CX(), a, b)
}

// mcphase appends a phase lam on target conditioned on every control. A
// single control uses the cx construction; more controls recurse by halving
// the angle around an X on the last control.
func mcphase(def *circuit.Circuit, lam param, ctrls []int, target int) {
	k := len(ctrls)
	if k == 1 {
		c := ctrls[0]
		half := lam.Scale(0.5)
		def.AppendAt(P(half), c)
		def.AppendAt(CX(), c, target)
		def.AppendAt(P(half.Neg()), target)
		def.AppendAt(CX(), c, target)
		def.AppendAt(P(half), target)
		return
	}
	rest, last := ctrls[:k-1], ctrls[k-1]
	half := lam.Scale(0.5)
	def.AppendAt(CP(half), last, target)
	def.AppendAt(MCX(k-1), append(append([]int{}, rest...), last)...)
	def.AppendAt(CP(half.Neg()), last, target)
	def.AppendAt(MCX(k-1), append(append([]int{}, rest...), last)...)
	def.AppendAt(MCPhase(half, k-1), append(append([]int{}, rest...), target)...)
}

// ctrlPhase appends a global phase conditioned on every control: a plain
// phase on a single control, otherwise a phase on the last control gated by
// the others.
func ctrlPhase(def *circuit.Circuit, phase param, ctrls []int) {
	if phase.IsZero() {
		return
	}
	k := len(ctrls)
	if k == 1 {
		def.AppendAt(P(phase), ctrls[0])
		return
	}
	def.AppendAt(MCPhase(phase, k-1), ctrls...)
}

// controlledU appends U(theta, phi, lam) times the phase gamma controlled on
// ctrls.
func controlledU(def *circuit.Circuit, theta, phi, lam, gamma param, ctrls []int, t int) {
	if len(ctrls) == 1 {
		c := ctrls[0]
		if !gamma.IsZero() {
			def.AppendAt(P(gamma), c)
		}
		def.AppendAt(P(lam.Add(phi).Scale(0.5)), c)
		def.AppendAt(P(lam.Add(phi.Neg()).Scale(0.5)), t)
		def.AppendAt(CX(), c, t)
		def.AppendAt(U(theta.Scale(-0.5), param{}, phi.Add(lam).Scale(-0.5)), t)
		def.AppendAt(CX(), c, t)
		def.AppendAt(U(theta.Scale(0.5), phi, param{}), t)
		return
	}
	k := len(ctrls)
	on := func(g circuit.Operation) {
		def.AppendAt(g, append(append([]int{}, ctrls...), t)...)
	}
	on(MCRZ(lam, k))
	on(MCRY(theta, k))
	on(MCRZ(phi, k))
	ctrlPhase(def, phi.Add(lam).Scale(0.5).Add(gamma), ctrls)
}
