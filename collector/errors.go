package collector

import (
	"errors"
	"fmt"
)

// ErrNoLicense is wrapped by MissingLicenseError.
var ErrNoLicense = errors.New("no license")

// MissingLicenseError reports a package for which no license file exists at
// any prefix under any vendor root.
type MissingLicenseError struct {
	Package string
}

func (e *MissingLicenseError) Error() string {
	return fmt.Sprintf("no license for package %s", e.Package)
}

// Unwrap implements the errors.Unwrap interface
func (e *MissingLicenseError) Unwrap() error {
	return ErrNoLicense
}

// ReadError reports a license file that was found but could not be read.
type ReadError struct {
	Package string
	Path    string
	Err     error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read license %s for package %s: %v", e.Path, e.Package, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *ReadError) Unwrap() error {
	return e.Err
}
