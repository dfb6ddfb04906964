package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel matched by InvalidArgumentError.
var ErrInvalidArgument = errors.New("invalid argument")

// ParseError represents a settings or template decoding failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures settings or template validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PrerequisiteError is a fatal gate failure raised before any resource family is processed:
// authentication, tenant mismatch or missing permissions.
type PrerequisiteError struct {
	Check string
	Err   error
}

// NewPrerequisiteError constructs a PrerequisiteError for the named check.
func NewPrerequisiteError(check string, err error) error {
	return &PrerequisiteError{Check: check, Err: err}
}

func (e *PrerequisiteError) Error() string {
	if e == nil {
		return ""
	}
	if e.Check != "" {
		return fmt.Sprintf("prerequisite %s failed: %v", e.Check, e.Err)
	}
	return fmt.Sprintf("prerequisite failed: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *PrerequisiteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InvalidArgumentError reports a mandatory argument that was absent or unusable.
type InvalidArgumentError struct {
	Argument string
	Message  string
}

// NewInvalidArgumentError constructs an InvalidArgumentError.
func NewInvalidArgumentError(argument, message string) error {
	return &InvalidArgumentError{Argument: argument, Message: message}
}

func (e *InvalidArgumentError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Message)
}

// Is lets errors.Is(err, ErrInvalidArgument) match any InvalidArgumentError.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
