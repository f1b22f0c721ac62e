// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad flags, unknown format, missing database).
	UserError = 1

	// BackendError indicates a failure while reading the database or writing output.
	BackendError = 3
)
