package updates

import (
	"errors"
	"fmt"
)

// ErrMissingFields is the message returned when version or platforms are missing.
const ErrMissingFields = "missing required fields: version and platforms"

// ValidationError is returned when a candidate record is malformed or incomplete.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MalformedRequestError is returned when a candidate isn't valid JSON.
type MalformedRequestError struct {
	Err error
}

func (*MalformedRequestError) Error() string {
	return "invalid JSON in request body"
}

func (e *MalformedRequestError) Unwrap() error {
	return e.Err
}

// StoreError is returned when the record store refused a write.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return "failed to update updates data"
	}

	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError

	return errors.As(err, &target)
}
