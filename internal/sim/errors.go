package sim

import "errors"

var (
	// ErrUnboundParameter is returned when an operation carries a symbolic parameter.
	ErrUnboundParameter = errors.New("unbound parameter")

	// ErrUnknownOperation is returned when an operation has neither a matrix nor a definition.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrControlPattern is returned when a control pattern does not fit the control lines.
	ErrControlPattern = errors.New("control pattern out of range")
)
