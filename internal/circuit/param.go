package circuit

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Param is an exact gate parameter: either a bound value or a linear
// expression over named symbols plus a constant. The zero value is the bound
// value 0. Params are immutable; every arithmetic helper returns a new value.
type Param struct {
	konst float64
	terms map[string]float64 // nil when bound
}

// Value returns a bound parameter.
func Value(v float64) Param {
	return Param{konst: v}
}

// Symbol returns an unbound parameter named name.
func Symbol(name string) Param {
	return Param{terms: map[string]float64{name: 1}}
}

// Bound reports whether the parameter has a concrete value.
func (p Param) Bound() bool {
	return len(p.terms) == 0
}

// Float returns the parameter value and true if it is bound.
func (p Param) Float() (float64, bool) {
	if !p.Bound() {
		return 0, false
	}
	return p.konst, true
}

// Equals reports exact equality with v. Unbound parameters never compare equal.
func (p Param) Equals(v float64) bool {
	return p.Bound() && p.konst == v
}

// IsZero reports whether the parameter is bound to exactly zero.
func (p Param) IsZero() bool {
	return p.Equals(0)
}

// Symbols returns the sorted names of the unbound symbols.
func (p Param) Symbols() []string {
	return slices.Sorted(maps.Keys(p.terms))
}

// Add returns p + q.
func (p Param) Add(q Param) Param {
	out := Param{konst: p.konst + q.konst}
	if p.Bound() && q.Bound() {
		return out
	}
	out.terms = make(map[string]float64, len(p.terms)+len(q.terms))
	for name, k := range p.terms {
		out.terms[name] += k
	}
	for name, k := range q.terms {
		out.terms[name] += k
	}
	return out.normalize()
}

// Scale returns k * p.
func (p Param) Scale(k float64) Param {
	out := Param{konst: p.konst * k}
	if p.Bound() {
		return out
	}
	out.terms = make(map[string]float64, len(p.terms))
	for name, c := range p.terms {
		out.terms[name] = c * k
	}
	return out.normalize()
}

// Neg returns -p.
func (p Param) Neg() Param {
	return p.Scale(-1)
}

// Bind substitutes the symbols present in values and leaves the others unbound.
func (p Param) Bind(values map[string]float64) Param {
	if p.Bound() {
		return p
	}
	out := Param{konst: p.konst, terms: make(map[string]float64, len(p.terms))}
	for name, k := range p.terms {
		if v, ok := values[name]; ok {
			out.konst += k * v
			continue
		}
		out.terms[name] = k
	}
	return out.normalize()
}

func (p Param) normalize() Param {
	for name, k := range p.terms {
		if k == 0 {
			delete(p.terms, name)
		}
	}
	if len(p.terms) == 0 {
		p.terms = nil
	}
	return p
}

// String renders the parameter in the notation accepted by ParseParam.
func (p Param) String() string {
	if p.Bound() {
		return FormatParam(p.konst)
	}
	var sb strings.Builder
	for i, name := range p.Symbols() {
		k := p.terms[name]
		switch {
		case i == 0 && k < 0:
			sb.WriteString("-")
		case i > 0 && k < 0:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		if abs := math.Abs(k); abs != 1 {
			fmt.Fprintf(&sb, "%s*", strconv.FormatFloat(abs, 'f', -1, 64))
		}
		sb.WriteString(name)
	}
	switch {
	case p.konst > 0:
		fmt.Fprintf(&sb, " + %s", FormatParam(p.konst))
	case p.konst < 0:
		fmt.Fprintf(&sb, " - %s", FormatParam(-p.konst))
	}
	return sb.String()
}

// termExprRegex matches a single term: an optional sign, an optional
// coefficient, an identifier (pi or a symbol name) and an optional divisor.
// Examples: "pi", "2pi", "3*pi/4", "-pi/2", "theta", "-theta/2", "0.5*lam"
var termExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*([a-z_][a-z0-9_]*)(?:\s*/\s*(\d+\.?\d*))?$`)

// ParseParam parses a parameter expression: a sum of terms.
//
// Supported terms:
//   - Plain numbers: "1.5707", "3.14", "-0.5", "3.14e-2"
//   - Pi expressions: "pi", "pi/2", "2*pi", "3pi/4", "-3*pi/4"
//   - Symbols: "theta", "-theta", "2*theta", "lam/2"
//
// Terms combine with + and -, e.g. "phi + lam - pi/2".
func ParseParam(s string) (Param, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Param{}, false
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return Value(val), true
	}

	var sum Param
	for _, term := range splitTerms(strings.ToLower(s)) {
		p, ok := parseTerm(term)
		if !ok {
			return Param{}, false
		}
		sum = sum.Add(p)
	}
	return sum, true
}

// splitTerms splits s before every top-level + or - that is not a leading
// sign, a numeric exponent sign, or an operand of * and /.
func splitTerms(s string) []string {
	var terms []string
	start := 0
	var prev, prev2 byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		exponent := prev == 'e' && prev2 >= '0' && prev2 <= '9'
		if (ch == '+' || ch == '-') && i > start && !exponent && prev != '*' && prev != '/' {
			terms = append(terms, s[start:i])
			start = i
		}
		if ch != ' ' {
			prev2, prev = prev, ch
		}
	}
	terms = append(terms, s[start:])
	for i, t := range terms {
		t = strings.TrimSpace(t)
		if rest, ok := strings.CutPrefix(t, "+"); ok {
			t = strings.TrimSpace(rest)
		} else if rest, ok := strings.CutPrefix(t, "-"); ok {
			t = "-" + strings.TrimSpace(rest)
		}
		terms[i] = t
	}
	return terms
}

func parseTerm(s string) (Param, bool) {
	if s == "" {
		return Param{}, false
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return Value(val), true
	}

	matches := termExprRegex.FindStringSubmatch(s)
	if matches == nil {
		return Param{}, false
	}
	negative := matches[1] == "-"
	coeffStr := matches[2]
	ident := matches[3]
	denomStr := matches[4]

	coeff := 1.0
	if coeffStr != "" {
		var err error
		coeff, err = strconv.ParseFloat(coeffStr, 64)
		if err != nil {
			return Param{}, false
		}
	}
	if denomStr != "" {
		denom, err := strconv.ParseFloat(denomStr, 64)
		if err != nil || denom == 0 {
			return Param{}, false
		}
		coeff /= denom
	}
	if negative {
		coeff = -coeff
	}

	if ident == "pi" {
		return Value(coeff * math.Pi), true
	}
	return Symbol(ident).Scale(coeff), true
}

// ParseParams parses a comma separated parameter list.
// Returns false if any part fails to parse.
func ParseParams(input string) ([]Param, bool) {
	var params []Param
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, ok := ParseParam(part)
		if !ok {
			return nil, false
		}
		params = append(params, p)
	}
	return params, true
}

// FormatParam formats a float64 parameter value, using pi notation when possible.
// Recognizes common pi fractions: pi, pi/2, pi/4, pi/3, pi/6, pi/8, 2pi, 3pi/4, etc.
func FormatParam(val float64) string {
	type piForm struct {
		value   float64
		display string
	}
	piForms := []piForm{
		{2 * math.Pi, "2*pi"},
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 6, "pi/6"},
		{math.Pi / 8, "pi/8"},
		{3 * math.Pi / 4, "3*pi/4"},
		{3 * math.Pi / 2, "3*pi/2"},
		{2 * math.Pi / 3, "2*pi/3"},
	}

	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}

	return strconv.FormatFloat(val, 'g', -1, 64)
}

// Values converts bound floats into params.
func Values(vs ...float64) []Param {
	out := make([]Param, len(vs))
	for i, v := range vs {
		out[i] = Value(v)
	}
	return out
}
