package main

import (
	"errors"
	"fmt"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// Exit codes returned by cvpack
const (
	exitFailure       = 1
	exitInvalidConfig = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classify maps domain errors onto exit codes
func classify(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if errors.Is(err, entities.ErrInvalidConfiguration) {
		return &ExitError{Code: exitInvalidConfig, Err: err}
	}
	return &ExitError{Code: exitFailure, Err: err}
}
