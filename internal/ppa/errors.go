package ppa

import "errors"

// Process exit codes defined by the CLI contract.
const (
	ExitCodeSuccess = 0
	ExitCodeFailure = 3
	ExitCodeUsage   = 4
)

// CodedError couples an error with the process exit code it should produce.
type CodedError struct {
	Code  int
	Cause error
}

// Error describes the underlying failure.
func (codedError CodedError) Error() string {
	return codedError.Cause.Error()
}

// Unwrap exposes the underlying cause.
func (codedError CodedError) Unwrap() error {
	return codedError.Cause
}

// NewFatalError wraps a failure that terminates the process with exit code 3.
func NewFatalError(cause error) error {
	if cause == nil {
		return nil
	}
	return CodedError{Code: ExitCodeFailure, Cause: cause}
}

// NewUsageError wraps a malformed invocation that terminates the process with exit code 4.
func NewUsageError(cause error) error {
	if cause == nil {
		return nil
	}
	return CodedError{Code: ExitCodeUsage, Cause: cause}
}

// ExitCodeForError maps an error onto the process exit code contract. Errors
// without an explicit code are treated as fatal.
func ExitCodeForError(executionError error) int {
	if executionError == nil {
		return ExitCodeSuccess
	}

	codedError := CodedError{}
	if errors.As(executionError, &codedError) {
		return codedError.Code
	}

	return ExitCodeFailure
}
