// Package runner spawns external commands for end-to-end tests and captures
// what they print.
//
// The main components are:
//   - Resources: scopes a Run so its temporary log file is always removed
//   - Run: executes a single command with an isolated environment, capturing
//     stdout (returned and mirrored into the log file), stderr and the exit code
//
// Only HOME is propagated to the child process. The exit code is recorded but
// never turned into an error; callers assert on it themselves.
package runner
