package control

import "errors"

var (
	// ErrInvalidControlState is returned for an integer control state outside
	// [0, 2^n) or a bitstring containing characters other than 0 and 1.
	ErrInvalidControlState = errors.New("invalid control state")

	// ErrLengthMismatch is returned when a bitstring control state does not
	// have one character per control qubit.
	ErrLengthMismatch = errors.New("control state length mismatch")

	// ErrInvalidNumCtrlQubits is returned when the number of control qubits
	// is below one or the composed total exceeds MaxCtrlQubits.
	ErrInvalidNumCtrlQubits = errors.New("invalid number of control qubits")

	// ErrUnsupportedBasisGate signals an instruction outside the basis
	// reaching the basis applier.
	ErrUnsupportedBasisGate = errors.New("unsupported basis gate")
)
