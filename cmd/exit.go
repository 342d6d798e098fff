package main

import (
	"errors"
	"fmt"

	"github.com/jaxxstorm/comver"
)

const (
	exitFailure = 1
	exitConfig  = 2
)

// exitError carries the process exit code for an error
type exitError struct {
	code  int
	cause error
}

func (e *exitError) Error() string { return e.cause.Error() }

func (e *exitError) Unwrap() error { return e.cause }

func (e *exitError) ExitCode() int { return e.code }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	if code <= 0 {
		code = exitFailure
	}
	return &exitError{code: code, cause: err}
}

// exitCodeOf maps an error to a process exit code, defaulting to 1
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}

	if errors.Is(err, comver.ErrInvalidPattern) ||
		errors.Is(err, comver.ErrUnknownOption) ||
		errors.Is(err, comver.ErrInvalidOption) {
		return exitConfig
	}
	return exitFailure
}

// errorf is fmt.Errorf with an explicit exit code
func errorf(code int, format string, args ...any) error {
	return withExitCode(code, fmt.Errorf(format, args...))
}
