package vm

import "github.com/pkg/errors"

// Sentinel errors for the VM's fatal conditions. Every one of these is
// wrapped with errors.Wrap/Wrapf at the point of failure so that callers
// printing "%+v" get the source line or register index that triggered it;
// errors.Cause(err) recovers the sentinel for branching.
var (
	// ErrCompile covers unterminated literals, bad array elements, unknown
	// labels, unknown opcodes and malformed named-variable declarations.
	ErrCompile = errors.New("compile error")

	// ErrTypeMismatch is raised when an integer operation is given a String
	// or Array operand, or an ordering comparison is given a String operand
	// (arrays are ordered by element sum).
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrRegisterOutOfBounds is raised when a register index falls outside
	// [0, N).
	ErrRegisterOutOfBounds = errors.New("register index out of bounds")

	// ErrIllegalDestination is raised when a write targets a non-register
	// operand.
	ErrIllegalDestination = errors.New("illegal write destination")

	// ErrHeapOverflow is raised when a write would push heap usage above
	// the configured budget. The register is left unchanged.
	ErrHeapOverflow = errors.New("heap budget exceeded")

	// ErrDivisionByZero is raised by DIV/MOD with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrStackOverflow is raised when CALL is attempted at call-stack
	// capacity.
	ErrStackOverflow = errors.New("call stack overflow")

	// ErrStackUnderflow is raised when RET is attempted on an empty call
	// stack.
	ErrStackUnderflow = errors.New("call stack underflow")

	// ErrPeripheralUnresolved is raised when a PERIPHERAL instruction names
	// a handler that is not currently registered.
	ErrPeripheralUnresolved = errors.New("peripheral not registered")

	// ErrSnapshotMalformed is raised when Restore is given input that does
	// not match the documented snapshot layout.
	ErrSnapshotMalformed = errors.New("malformed snapshot")

	// ErrHalted is returned by Step once a HALT instruction has executed or
	// the program counter has run past the last instruction. It is not a
	// fault: hosts should treat it as "nothing more to do".
	ErrHalted = errors.New("program halted")
)
