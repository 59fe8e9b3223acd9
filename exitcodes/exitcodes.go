// Package exitcodes defines the standard exit codes used by op-licenses.
package exitcodes

// Exit code constants used by op-licenses
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every package resolved to a license
// * MissingLicense (1): Used when at least one package has no discoverable license
// * RuntimeErr (2): Used for runtime errors such as bad configuration or unreadable files
const (
	Success        = 0 // All packages licensed
	MissingLicense = 1 // Unlicensed dependency found
	RuntimeErr     = 2 // Runtime errors
)
