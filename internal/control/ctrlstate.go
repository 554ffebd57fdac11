package control

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxCtrlQubits bounds the total number of control lines of a result so
// that control states fit an int bitmask.
const MaxCtrlQubits = 32

type stateKind int

const (
	stateClosed stateKind = iota
	stateInt
	stateBits
)

// CtrlState specifies the control pattern that activates an operation. The
// zero value selects the all-ones pattern.
type CtrlState struct {
	kind stateKind
	n    int
	bits string
}

// StateInt specifies the pattern as an integer bitmask: bit i is control i.
func StateInt(k int) CtrlState {
	return CtrlState{kind: stateInt, n: k}
}

// StateBits specifies the pattern as a bitstring with the last control
// qubit leftmost.
func StateBits(s string) CtrlState {
	return CtrlState{kind: stateBits, bits: s}
}

// IsSet reports whether an explicit pattern was given.
func (s CtrlState) IsSet() bool {
	return s.kind != stateClosed
}

// IsZero reports whether s is the all-ones default, for YAML omitempty.
func (s CtrlState) IsZero() bool {
	return !s.IsSet()
}

// Resolve returns the bitmask for n control qubits.
func (s CtrlState) Resolve(n int) (int, error) {
	if n < 1 || n > MaxCtrlQubits {
		return 0, fmt.Errorf("%d control qubits: %w", n, ErrInvalidNumCtrlQubits)
	}
	switch s.kind {
	case stateInt:
		if s.n < 0 || s.n >= 1<<n {
			return 0, fmt.Errorf("state %d for %d control qubits: %w", s.n, n, ErrInvalidControlState)
		}
		return s.n, nil
	case stateBits:
		if len(s.bits) != n {
			return 0, fmt.Errorf("state %q for %d control qubits: %w", s.bits, n, ErrLengthMismatch)
		}
		return Decode(s.bits)
	}
	return 1<<n - 1, nil
}

// Decode parses a bitstring, most significant bit first.
func Decode(bits string) (int, error) {
	if bits == "" || strings.Trim(bits, "01") != "" {
		return 0, fmt.Errorf("bitstring %q: %w", bits, ErrInvalidControlState)
	}
	v, err := strconv.ParseUint(bits, 2, MaxCtrlQubits)
	if err != nil {
		return 0, fmt.Errorf("bitstring %q: %w", bits, ErrInvalidControlState)
	}
	return int(v), nil
}

// Encode renders state as an n-character bitstring, most significant bit first.
func Encode(state, n int) string {
	return fmt.Sprintf("%0*b", n, state)
}

// ParseCtrlState reads a pattern from text: empty selects all ones, a "0b"
// prefix marks a bitstring and anything else is a decimal integer.
func ParseCtrlState(s string) (CtrlState, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CtrlState{}, nil
	}
	if bits, ok := strings.CutPrefix(s, "0b"); ok {
		if _, err := Decode(bits); err != nil {
			return CtrlState{}, err
		}
		return StateBits(bits), nil
	}
	k, err := strconv.Atoi(s)
	if err != nil {
		return CtrlState{}, fmt.Errorf("control state %q: %w", s, ErrInvalidControlState)
	}
	return StateInt(k), nil
}

func (s CtrlState) String() string {
	switch s.kind {
	case stateInt:
		return strconv.Itoa(s.n)
	case stateBits:
		return "0b" + s.bits
	}
	return ""
}

// UnmarshalYAML accepts an integer or a bitstring. A YAML integer is a
// bitmask; a string is a bitstring, with or without the "0b" prefix.
// Bitstrings must be quoted unless they carry "0b": YAML reads a plain 010
// as a number, so integers with a leading zero are rejected.
func (s *CtrlState) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!null":
		*s = CtrlState{}
	case "!!int":
		if bits, ok := strings.CutPrefix(node.Value, "0b"); ok {
			if _, err := Decode(bits); err != nil {
				return err
			}
			*s = StateBits(bits)
			return nil
		}
		if len(node.Value) > 1 && node.Value[0] == '0' {
			return fmt.Errorf("line %d: control state %s: quote bitstrings: %w", node.Line, node.Value, ErrInvalidControlState)
		}
		var k int
		if err := node.Decode(&k); err != nil {
			return err
		}
		*s = StateInt(k)
	case "!!str":
		bits := strings.TrimPrefix(node.Value, "0b")
		if bits == "" {
			*s = CtrlState{}
			return nil
		}
		if _, err := Decode(bits); err != nil {
			return err
		}
		*s = StateBits(bits)
	default:
		return fmt.Errorf("line %d: control state %q: %w", node.Line, node.Value, ErrInvalidControlState)
	}
	return nil
}

// MarshalYAML writes integers as YAML integers and bitstrings as strings.
func (s CtrlState) MarshalYAML() (any, error) {
	switch s.kind {
	case stateInt:
		return s.n, nil
	case stateBits:
		return s.bits, nil
	}
	return nil, nil
}
