package main

import (
	"errors"
	"fmt"
)

// Exit codes
const (
	ExitOK = 0
	// ExitFailure means nothing was deleted: configuration errors, no release
	// found, interrupted or refused before the wipe
	ExitFailure = 1
	// ExitUnsafe means a target was wiped and could not be fully restored
	ExitUnsafe = 2
)

// ExitError carries the process exit code out of the root command
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

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
