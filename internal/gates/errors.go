package gates

import (
	"errors"

	"qctrl/internal/circuit"
)

var (
	// ErrUnknownGate is returned when a name does not denote a standard gate.
	ErrUnknownGate = errors.New("unknown gate")

	// ErrParamCount is returned when a gate receives the wrong number of parameters.
	ErrParamCount = errors.New("wrong number of parameters")

	// ErrNotUnitary is returned when a matrix is not unitary.
	ErrNotUnitary = circuit.ErrNotUnitary
)
