package construct

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is wrapped by every *ConfigurationError.
	ErrConfiguration = errors.New("construct: invalid configuration")
	// ErrValidation is wrapped by every *ValidationFailure.
	ErrValidation = errors.New("construct: triangulation failed validation")
	// ErrNotConverged is wrapped by every *NotConvergedError.
	ErrNotConverged = errors.New("construct: construction did not converge")
)

// ConfigurationError reports a parameter which makes a run impossible. It is
// always returned before any geometry is built.
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("construct: %s = %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ValidationFailure reports a finished triangulation which can't be used.
type ValidationFailure struct {
	Result ValidationResult
	Err    error
}

func (e *ValidationFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("construct: validation failed: %s", e.Err.Error())
	}
	return fmt.Sprintf("construct: validation failed: dimension is %d",
		e.Result.Dimension)
}

func (e *ValidationFailure) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

// NotConvergedError reports a run which reached its attempt ceiling before
// building enough cells. The partial result is still returned.
type NotConvergedError struct {
	Attempts    int
	FiniteCells int
	Target      int
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf(
		"construct: only %d of %d finite cells built after %d attempts",
		e.FiniteCells, e.Target, e.Attempts,
	)
}

func (e *NotConvergedError) Unwrap() error { return ErrNotConverged }
