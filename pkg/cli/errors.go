package cli

import (
	"errors"
	"fmt"

	"mercator-hq/flowmaker/pkg/config"
	pseudoerrors "mercator-hq/flowmaker/pkg/pseudo/errors"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1 // compile errors, failed operations
	ExitConfig  = 2 // invalid configuration or usage
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var cfgErr *ConfigError
	var validationErr config.ValidationError
	if errors.As(err, &cfgErr) || errors.As(err, &validationErr) {
		return ExitConfig
	}
	return ExitFailure
}

// CompileErrorDetail renders err for a terminal: the compiler's detailed
// view with source context for compile errors, the plain message otherwise.
func CompileErrorDetail(err error) string {
	var perr *pseudoerrors.Error
	if errors.As(err, &perr) {
		return perr.Detail()
	}
	return err.Error() + "\n"
}
