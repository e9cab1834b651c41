package temperature

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure kinds that carry no payload.
var (
	// ErrDivisionByZero rejects a zero scalar in Checked.Div.
	ErrDivisionByZero = errors.New("division by zero is not allowed")

	// ErrNaN rejects NaN magnitudes from checked temperatures.
	ErrNaN = errors.New("NaN temperatures are not allowed")
)

// Reasons carried by OutOfBoundsError.
const (
	ReasonTooHigh = "Too high!"
	ReasonTooLow  = "Too low!"
)

// BoundError reports a bound value that cannot be applied, either
// because it crosses the opposite bound or leaves the representable
// range. High tells which direction was violated.
type BoundError struct {
	Value Float
	High  bool
}

func (e *BoundError) Error() string {
	if e.High {
		return fmt.Sprintf("given bound, %v, was too high", e.Value)
	}
	return fmt.Sprintf("given bound, %v, was too low", e.Value)
}

// BelowAbsoluteZeroError reports a magnitude below absolute zero on
// its own scale.
type BelowAbsoluteZeroError struct {
	Value Float
}

func (e *BelowAbsoluteZeroError) Error() string {
	return fmt.Sprintf("given temperature, %v, was below absolute zero", e.Value)
}

// OutOfBoundsError reports a magnitude outside the permitted interval.
// Reason is one of ReasonTooHigh or ReasonTooLow.
type OutOfBoundsError struct {
	Value  Float
	Reason string
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("given temperature, %v, was out of bounds (%s)", e.Value, e.Reason)
}
