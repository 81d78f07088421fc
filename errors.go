package qthought

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when an operator, state or subsystem
	// dimension does not fit the space it is applied to.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidBasis is returned for malformed measurement bases, or bases
	// whose dimension does not match the measured subsystems.
	ErrInvalidBasis = errors.New("invalid basis")

	// ErrUnknownSubsystem is returned when a name is not part of the system.
	ErrUnknownSubsystem = errors.New("unknown subsystem")

	// ErrUnsupportedInterpretation is returned when an interpretation is not
	// registered, or none was supplied.
	ErrUnsupportedInterpretation = errors.New("unsupported interpretation")

	// ErrNonNormalizedState signals a broken normalization invariant.
	ErrNonNormalizedState = errors.New("state is not normalized")

	// ErrSubsystemCollision is returned when two subsystems share a name.
	ErrSubsystemCollision = errors.New("subsystem name collision")

	// ErrNotUnitary is returned when a unitary step or Apply gets an
	// operator that is not unitary.
	ErrNotUnitary = errors.New("operator is not unitary")

	// ErrInvalidTargets is returned for empty or repeated targets, and for
	// options that do not fit the kind of step they are given to.
	ErrInvalidTargets = errors.New("invalid targets")

	// ErrInvalidProposition is returned for claims that cannot be evaluated.
	ErrInvalidProposition = errors.New("invalid proposition")

	// ErrNoRandomSource is returned when a run has no source of outcomes.
	ErrNoRandomSource = errors.New("no random source")

	// ErrNoProtocol is returned when an ensemble is started without a protocol.
	ErrNoProtocol = errors.New("no protocol")

	// ErrMalformedTrace is returned by Check for traces that do not describe
	// a run of the listed subsystems.
	ErrMalformedTrace = errors.New("malformed trace")
)

/*
StepError reports the protocol step at which execution stopped. It wraps the
underlying cause, so errors.Is works against the sentinel errors above.
*/
type StepError struct {
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
