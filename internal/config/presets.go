package config

import (
	"maps"
	"slices"

	"qctrl/internal/control"
)

// Presets are named synthesis requests layered over DefaultConfig. Bitstring
// states are listed with a 0b prefix, which a config file accepts unquoted.
var Presets = map[string]*Config{
	"toffoli":  {Gate: "x", NumCtrlQubits: 2},
	"fredkin":  {Gate: "swap", NumCtrlQubits: 1},
	"ccz":      {Gate: "z", NumCtrlQubits: 2},
	"open-cx":  {Gate: "x", NumCtrlQubits: 1, CtrlState: control.StateInt(0)},
	"c3-phase": {Gate: "p", Params: []string{"pi/4"}, NumCtrlQubits: 3},
	"mixed-h":  {Gate: "h", NumCtrlQubits: 3, CtrlState: control.StateBits("101")},
	"crx-open": {Gate: "rx", Params: []string{"theta"}, NumCtrlQubits: 2, CtrlState: control.StateBits("01")},
}

// GetPreset returns the named preset merged over the defaults, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Gate = p.Gate
	cfg.Params = slices.Clone(p.Params)
	cfg.NumCtrlQubits = p.NumCtrlQubits
	cfg.CtrlState = p.CtrlState
	return cfg
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
