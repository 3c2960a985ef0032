package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Failure codes for the provisioning workflow. Every fatal condition in
// keyup maps to exactly one of these, and each code maps to a process
// exit code (see ExitCode).
const (
	ErrInvalidArgumentCount     = "INVALID_ARGUMENT_COUNT"
	ErrInvalidAddressFormat     = "INVALID_ADDRESS_FORMAT"
	ErrDirectoryCreateFailed    = "DIRECTORY_CREATE_FAILED"
	ErrAclApplyFailed           = "ACL_APPLY_FAILED"
	ErrConfigWriteFailed        = "CONFIG_WRITE_FAILED"
	ErrGlobalConfigUpdateFailed = "GLOBAL_CONFIG_UPDATE_FAILED"
	ErrKeyGenerationFailed      = "KEY_GENERATION_FAILED"
	ErrRemoteKeyInstallFailed   = "REMOTE_KEY_INSTALL_FAILED"
	ErrConnectivityCheckFailed  = "CONNECTIVITY_CHECK_FAILED"
)

// Exit codes reported to the shell. Validation errors are distinct from
// local resource errors so automation can tell "bad input" apart from
// "bad environment", and a verification failure is distinct from a setup
// failure because setup did complete.
const (
	ExitOK         = 0
	ExitValidation = 1
	ExitLocal      = 2
	ExitKeygen     = 3
	ExitRemote     = 4
	ExitVerify     = 5
)

// Error represents a structured error with code, message, suggestion, and
// optional cause. Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Code == code
	}
	return false
}

// Code returns the failure code of a structured error, or "" for nil and
// plain errors.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return ""
}

// ExitCode maps an error to the process exit code documented in the CLI
// help. Plain (non-structured) errors count as validation failures since
// the only unstructured errors reaching the top level come from argument
// handling.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch Code(err) {
	case ErrInvalidArgumentCount, ErrInvalidAddressFormat:
		return ExitValidation
	case ErrDirectoryCreateFailed, ErrAclApplyFailed, ErrConfigWriteFailed, ErrGlobalConfigUpdateFailed:
		return ExitLocal
	case ErrKeyGenerationFailed:
		return ExitKeygen
	case ErrRemoteKeyInstallFailed:
		return ExitRemote
	case ErrConnectivityCheckFailed:
		return ExitVerify
	default:
		return ExitValidation
	}
}
