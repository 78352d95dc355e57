package qecc

import (
	"errors"
	"fmt"
)

var (
	// ErrInternalConsistency means the engine broke one of its own
	// invariants: normalization drifted, or decoding left more than one
	// non-negligible amplitude behind for a value of the inspected qubit.
	ErrInternalConsistency = errors.New("internal consistency violated")

	// ErrNumericRange means a phase-difference component fell outside
	// [-1-ε, 1+ε].
	ErrNumericRange = errors.New("numeric range exceeded")

	// ErrInvalidInput is returned for out-of-range angles, qubit indices
	// and malformed gates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBreakerOpen marks scenarios skipped after the fatal breaker tripped.
	ErrBreakerOpen = errors.New("fatal breaker open")
)

// ErrorClass groups evaluation failures by what they say about the code
// under test.
type ErrorClass string

const (
	ClassInternalConsistency ErrorClass = "internal-consistency"
	ClassNumericRange        ErrorClass = "numeric-range"
	ClassInvalidInput        ErrorClass = "invalid-input"
	ClassSkipped             ErrorClass = "skipped"
	ClassUnknown             ErrorClass = "unknown"
)

// Fatal reports whether the class points at an implementation bug rather
// than a legitimate limit of the code.
func (class ErrorClass) Fatal() bool {
	return class == ClassInternalConsistency || class == ClassNumericRange
}

// EvaluationError carries the class and scenario of a failed evaluation.
// A correction that simply did not work is never an EvaluationError; it is
// a Verdict with Passed set to false.
type EvaluationError struct {
	Class    ErrorClass
	Scenario string
	Err      error
}

func (e *EvaluationError) Error() string {
	if e.Scenario != "" {
		return fmt.Sprintf("[%s] scenario %s: %v", e.Class, e.Scenario, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Class, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Classify maps any error returned by this package onto an ErrorClass.
func Classify(err error) ErrorClass {
	var evalErr *EvaluationError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &evalErr):
		return evalErr.Class
	case errors.Is(err, ErrInternalConsistency):
		return ClassInternalConsistency
	case errors.Is(err, ErrNumericRange):
		return ClassNumericRange
	case errors.Is(err, ErrInvalidInput):
		return ClassInvalidInput
	case errors.Is(err, ErrBreakerOpen):
		return ClassSkipped
	default:
		return ClassUnknown
	}
}

// IsFatal is shorthand for Classify(err).Fatal().
func IsFatal(err error) bool {
	return Classify(err).Fatal()
}

func newEvaluationError(scenario string, err error) *EvaluationError {
	return &EvaluationError{
		Class:    Classify(err),
		Scenario: scenario,
		Err:      err,
	}
}
