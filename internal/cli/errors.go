package cli

import (
	"errors"

	"github.com/sleroq/things3-to-org/internal/app/console"
	"github.com/sleroq/things3-to-org/internal/app/exporter"
	"github.com/sleroq/things3-to-org/internal/exitcode"
	"github.com/sleroq/things3-to-org/internal/infra/exportfs"
)

type backendError struct {
	err error
}

func (e backendError) Error() string {
	return e.err.Error()
}

func (e backendError) Unwrap() error {
	return e.err
}

var userErrors = []error{
	exporter.ErrDatabaseNotFound,
	exporter.ErrStdoutFormat,
	exportfs.ErrUnknownFormat,
	exportfs.ErrInvalidFilenameEscaping,
	console.ErrInterrupted,
}

func classify(err error) error {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return backendError{err: err}
}

// ExitCode maps an error returned by the root command to a process exit code.
// Flag and argument errors from cobra count as user errors.
func ExitCode(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var be backendError
	if errors.As(err, &be) {
		return exitcode.BackendError
	}
	return exitcode.UserError
}
