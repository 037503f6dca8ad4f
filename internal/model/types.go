package model

import (
	"fmt"
	"strings"
)

// RepoMode classifies whether the detected repository root governs a single
// package or a workspace of many packages.
//
// The mode decides which compatibility flags a delegated child process must
// receive: a single-package repository is announced to the child via
// --single-package because the child's own inference is skipped.
type RepoMode string

const (
	// ModeSinglePackage indicates the root contains exactly one package and
	// no workspace declaration was found.
	ModeSinglePackage RepoMode = "single-package"

	// ModeMultiPackage indicates a workspace declaration (npm workspaces or
	// pnpm-workspace.yaml) was found at or above the chosen root.
	ModeMultiPackage RepoMode = "multi-package"
)

// String returns the string representation of RepoMode.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in diagnostics and JSON payloads.
func (m RepoMode) String() string {
	return string(m)
}

// IsValid checks whether the RepoMode value is one of the
// predefined valid modes.
func (m RepoMode) IsValid() bool {
	switch m {
	case ModeSinglePackage, ModeMultiPackage:
		return true
	default:
		return false
	}
}

// ParseRepoMode converts a string to a RepoMode.
// Returns an error if the string does not match any valid mode.
func ParseRepoMode(s string) (RepoMode, error) {
	mode := RepoMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid repository mode: %q (valid: single-package, multi-package)", s)
	}
	return mode, nil
}

// RepoState is the result of repository inference: the absolute path of the
// project root and the mode that governs it.
//
// A RepoState is computed fresh on every invocation, consumed immediately by
// the dispatcher, and then discarded. Nothing is cached across runs, which
// keeps repeated invocations idempotent on an unchanged filesystem.
type RepoState struct {
	// Root is the absolute path of the inferred project root. It is always
	// a directory that existed on disk at inference time.
	Root string `json:"root"`

	// Mode is single-package unless a workspace declaration was found.
	Mode RepoMode `json:"mode"`
}

// String returns a human-readable representation of the repository state.
func (s *RepoState) String() string {
	return fmt.Sprintf("%s (%s)", s.Root, s.Mode)
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred. Argument
	// parse errors, version-gate failures, and spawn failures all surface
	// with this code.
	ExitGeneralError ExitCode = 1

	// ExitChildUnknown is used when a delegated child process terminated
	// without a recoverable exit code (e.g., it was killed by a signal).
	ExitChildUnknown ExitCode = 2

	// ExitNoRepository indicates a command that requires a repository was
	// invoked outside of one.
	ExitNoRepository ExitCode = 3

	// ExitAuthRequired indicates a command needs an auth token but the user
	// is not logged in.
	ExitAuthRequired ExitCode = 4
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
