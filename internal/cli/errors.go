package cli

import (
	"errors"
	"fmt"
)

// ExitError represents a command execution failure with a specific exit code.
//
// This error type allows Cobra RunE functions to signal non-zero exit codes
// without calling os.Exit() directly, enabling testable CLI behavior.
// When a command fails, it returns NewExitError(code), which propagates up
// to [RunWithConfig] where [IsExitError] extracts the code for [ExecuteResult].
type ExitError struct {
	// Code is the exit code to return to the shell.
	Code int
}

// Error implements the error interface, returning a string in the format
// "exit status N" where N is the exit code.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
//
// Use this in Cobra RunE functions when the failure has already been
// reported to the user, for example after printing usage:
//
//	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
//	return NewExitError(1)
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError checks if err is or wraps an [ExitError] and extracts its
// exit code.
//
// Returns (code, true) for an *ExitError and (0, false) for nil or any
// other error. Other errors are printed by [RunWithConfig] and exit 1.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
