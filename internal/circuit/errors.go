package circuit

import "errors"

var (
	// ErrNotUnitary is returned when QASM input contains a non-unitary
	// statement such as measure, reset, barrier or a classical condition.
	ErrNotUnitary = errors.New("non-unitary instruction")

	// ErrSyntax is returned for QASM input that cannot be parsed.
	ErrSyntax = errors.New("qasm syntax error")
)
