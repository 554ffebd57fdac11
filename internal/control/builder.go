package control

import (
	"qctrl/internal/circuit"
	"qctrl/internal/gates"
)

// buildControlled assembles the controlled operation for src with n new
// control lines in state, defined by the closed circuit def. An already
// controlled src contributes its control lines and base gate: its state is
// shifted above the new lines.
func buildControlled(src circuit.Operation, n, state int, def *circuit.Circuit, label string) circuit.Operation {
	total, composed, base := n, state, src
	if src.Control != nil {
		total += src.Control.NumCtrlQubits
		composed = src.Control.CtrlState<<n | state
		base = src.Control.Base
	}
	if src.Label != "" {
		base = base.WithLabel(src.Label)
	}

	return circuit.Operation{
		Name:      gates.ControlledName(total, base.Name),
		NumQubits: def.NumQubits(),
		Params:    src.Params,
		Label:     label,
		Control: &circuit.Control{
			NumCtrlQubits: total,
			CtrlState:     composed,
			Base:          base,
		},
	}.WithDefinition(def)
}
