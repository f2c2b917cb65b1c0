package fixed

import "errors"

var (
	// ErrOverflow is returned when a result does not fit in 256 bits.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("arithmetic underflow")
	// ErrDivisionByZero is returned for a zero denominator.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidDecimal is returned for malformed decimal strings.
	ErrInvalidDecimal = errors.New("invalid decimal")
)
