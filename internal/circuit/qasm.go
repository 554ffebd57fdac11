package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex        = regexp.MustCompile(`^qreg\s+([a-z_][a-z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
	cregRegex        = regexp.MustCompile(`^creg\s+([a-z_][a-z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
	gateCallRegex    = regexp.MustCompile(`^([a-z_][a-z0-9_]*)\s*(?:\(([^()]*)\))?\s+(.+)$`)
	qubitArgRegex    = regexp.MustCompile(`^([a-z_][a-z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
	globalPhaseRegex = regexp.MustCompile(`^//\s*global phase:\s*(.+)$`)
	nonUnitaryRegex  = regexp.MustCompile(`^(measure|reset|barrier|if)\b`)
)

// MaxQASMQubits bounds the total number of qubits ParseQASM will declare
// across all qreg statements.
const MaxQASMQubits = 64

// Resolver turns a parsed gate call into an operation. It lets callers bind
// names to a gate catalog; a nil Resolver yields plain named operations.
type Resolver func(name string, params []Param, numQubits int) (Operation, error)

// ToQASM generates QASM 2.0 output from the circuit. A non-zero global phase
// is written as a comment that ParseQASM reads back.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	if !c.GlobalPhase.IsZero() {
		fmt.Fprintf(&sb, "// global phase: %s\n", c.GlobalPhase)
	}
	sb.WriteString("\n")
	for _, r := range c.regs {
		fmt.Fprintf(&sb, "qreg %s[%d];\n", r.Name, r.Size)
	}
	if len(c.data) > 0 {
		sb.WriteString("\n")
	}

	for _, inst := range c.data {
		sb.WriteString(inst.Op.QASMName())
		if len(inst.Op.Params) > 0 {
			fmt.Fprintf(&sb, "(%s)", joinParams(inst.Op.Params))
		}
		sb.WriteString(" ")
		for i, q := range inst.Qubits {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(q.String())
		}
		sb.WriteString(";\n")
	}
	return sb.String()
}

func joinParams(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// ParseQASM parses the unitary subset of QASM 2.0: register declarations,
// gate calls with optional parameter lists, comments and includes. Gate calls
// must come after the registers they use.
func ParseQASM(qasm string, resolve Resolver) (*Circuit, error) {
	c := New()
	var phase Param

	for lineNo, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if m := globalPhaseRegex.FindStringSubmatch(line); m != nil {
			p, ok := ParseParam(m[1])
			if !ok {
				return nil, fmt.Errorf("line %d: global phase %q: %w", lineNo+1, m[1], ErrSyntax)
			}
			phase = phase.Add(p)
			continue
		}
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.ToLower(strings.TrimSpace(stmt))
			if stmt == "" {
				continue
			}
			if err := c.parseStatement(stmt, resolve); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
		}
	}
	c.GlobalPhase = phase
	return c, nil
}

func (c *Circuit) parseStatement(stmt string, resolve Resolver) error {
	switch {
	case strings.HasPrefix(stmt, "openqasm"), strings.HasPrefix(stmt, "include"):
		return nil
	case cregRegex.MatchString(stmt):
		return nil
	case nonUnitaryRegex.MatchString(stmt):
		return fmt.Errorf("%q: %w", stmt, ErrNotUnitary)
	}

	if m := qregRegex.FindStringSubmatch(stmt); m != nil {
		size, err := strconv.Atoi(m[2])
		if err != nil || size < 1 || c.NumQubits()+size > MaxQASMQubits {
			return fmt.Errorf("register %s[%s] (at most %d qubits in total): %w", m[1], m[2], MaxQASMQubits, ErrSyntax)
		}
		for _, r := range c.regs {
			if r.Name == m[1] {
				return fmt.Errorf("duplicate register %q: %w", m[1], ErrSyntax)
			}
		}
		c.AddRegister(NewRegister(m[1], size))
		return nil
	}

	m := gateCallRegex.FindStringSubmatch(stmt)
	if m == nil {
		return fmt.Errorf("%q: %w", stmt, ErrSyntax)
	}
	name, paramStr, argStr := m[1], m[2], m[3]

	var params []Param
	if strings.TrimSpace(paramStr) != "" {
		var ok bool
		if params, ok = ParseParams(paramStr); !ok {
			return fmt.Errorf("parameters %q: %w", paramStr, ErrSyntax)
		}
	}

	var qubits []Qubit
	for _, arg := range strings.Split(argStr, ",") {
		am := qubitArgRegex.FindStringSubmatch(strings.TrimSpace(arg))
		if am == nil {
			return fmt.Errorf("argument %q: %w", arg, ErrSyntax)
		}
		idx, err := strconv.Atoi(am[2])
		if err != nil {
			return fmt.Errorf("argument %q: %w", arg, ErrSyntax)
		}
		q := Qubit{Register: am[1], Index: idx}
		if c.Index(q) < 0 {
			return fmt.Errorf("unknown qubit %s: %w", q, ErrSyntax)
		}
		for _, prev := range qubits {
			if prev == q {
				return fmt.Errorf("qubit %s repeated in %s: %w", q, name, ErrSyntax)
			}
		}
		qubits = append(qubits, q)
	}

	op := Operation{Name: name, NumQubits: len(qubits), Params: params}
	if resolve != nil {
		var err error
		if op, err = resolve(name, params, len(qubits)); err != nil {
			return err
		}
		if op.NumQubits != len(qubits) {
			return fmt.Errorf("%s acts on %d qubits, got %d: %w", name, op.NumQubits, len(qubits), ErrSyntax)
		}
	}
	c.Append(op, qubits...)
	return nil
}
