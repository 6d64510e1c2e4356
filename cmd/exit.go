package cmd

import (
	"errors"
	"fmt"

	"github.com/chris-regnier/focusflow/internal/storage"
)

// Process exit codes.
const (
	exitOK       = 0
	exitFailure  = 1 // bad input, record not found
	exitStorage  = 2 // storage unavailable or failing
	exitExternal = 3 // editor or remote service failure
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrValidation):
		return exitFailure
	case errors.Is(err, storage.ErrStorage), errors.Is(err, storage.ErrConflict):
		return exitStorage
	}
	return exitFailure
}

// notFound names the missing record in a not-found error.
func notFound(kind, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s %s not found: %w", kind, id, err)
	}
	return err
}
