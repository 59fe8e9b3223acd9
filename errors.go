package licenses

import (
	"errors"
	"fmt"

	"github.com/ethereum-optimism/infra/op-licenses/collector"
)

// RuntimeError represents an operational error that should lead to exit code 2
// Examples include configuration errors, unreadable input, unwritable output, etc.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// MissingLicenseError is returned when a package has no discoverable license (exit code 1)
type MissingLicenseError = collector.MissingLicenseError

// IsMissingLicenseError checks if the error is or wraps a MissingLicenseError
func IsMissingLicenseError(err error) bool {
	var missingErr *MissingLicenseError
	return err != nil && errors.As(err, &missingErr)
}
