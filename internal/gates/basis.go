package gates

import (
	"maps"
	"slices"

	"qctrl/internal/circuit"
)

// Basis enumerates the gates that have a closed-form controlled synthesis.
type Basis int

const (
	BasisNone Basis = iota
	BasisP
	BasisU
	BasisX
	BasisZ
	BasisY
	BasisH
	BasisSX
	BasisSXdg
	BasisRX
	BasisRY
	BasisRZ
	BasisCX
	BasisCZ
)

var basisNames = map[Basis]string{
	BasisP:    "p",
	BasisU:    "u",
	BasisX:    "x",
	BasisZ:    "z",
	BasisY:    "y",
	BasisH:    "h",
	BasisSX:   "sx",
	BasisSXdg: "sxdg",
	BasisRX:   "rx",
	BasisRY:   "ry",
	BasisRZ:   "rz",
	BasisCX:   "cx",
	BasisCZ:   "cz",
}

var basisByName = func() map[string]Basis {
	m := make(map[string]Basis, len(basisNames))
	for b, name := range basisNames {
		m[name] = b
	}
	return m
}()

// Lookup returns the basis gate named name, or BasisNone.
func Lookup(name string) Basis {
	return basisByName[name]
}

func (b Basis) String() string {
	if name, ok := basisNames[b]; ok {
		return name
	}
	return "none"
}

// BasisSet returns the names of every basis gate.
func BasisSet() map[string]bool {
	set := make(map[string]bool, len(basisNames))
	for _, name := range basisNames {
		set[name] = true
	}
	return set
}

// BasisNames returns the basis gate names in declaration order.
func BasisNames() []string {
	var names []string
	for _, b := range slices.Sorted(maps.Keys(basisNames)) {
		names = append(names, b.String())
	}
	return names
}

// IsBasisGate reports whether g is a basis gate in its standard form.
func IsBasisGate(g circuit.Operation) bool {
	return Lookup(g.Name) != BasisNone && HasStandardArity(g)
}

// HasStandardArity reports whether g carries the parameter count of the
// standard gate sharing its name. Names outside the standard table pass.
func HasStandardArity(g circuit.Operation) bool {
	s, ok := standard[g.Name]
	return !ok || len(g.Params) == s.numParams
}
