// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrConfigNotFound     = errors.New("configuration not found")
	ErrRosterNotFound     = errors.New("expert roster not found")
	ErrRosterSize         = errors.New("expert roster size mismatch")
	ErrTemplateInvalid    = errors.New("invalid item template")
	ErrUnknownItemSource  = errors.New("unknown item source")
	ErrInvariant          = errors.New("invariant violated")
	ErrItemNotStocked     = errors.New("item not stocked by any stall")
	ErrPhaseOrder         = errors.New("phase called out of order")
	ErrDatabaseError      = errors.New("database error")
	ErrDataNotFound       = errors.New("data not found")
	ErrInputValidation    = errors.New("input validation failed")
)

// ConfigError represents a configuration loading or validation error.
type ConfigError struct {
	File  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.File != "" && e.Field != "":
		return fmt.Sprintf("config error [%s] %s: %v", e.File, e.Field, e.Err)
	case e.File != "":
		return fmt.Sprintf("config error [%s]: %v", e.File, e.Err)
	case e.Field != "":
		return fmt.Sprintf("config error %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(file, field string, err error) *ConfigError {
	return &ConfigError{
		File:  file,
		Field: field,
		Err:   err,
	}
}

// InvalidField reports a field that failed validation. The returned error
// matches ErrConfigInvalid.
func InvalidField(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Field: field,
		Err:   fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConfigInvalid),
	}
}

// RosterError represents a problem with the expert roster document.
type RosterError struct {
	Path     string
	Expected int
	Found    int
	Err      error
}

func (e *RosterError) Error() string {
	if e.Expected > 0 && e.Found != e.Expected {
		return fmt.Sprintf("roster error [%s]: expected %d experts, found %d: %v", e.Path, e.Expected, e.Found, e.Err)
	}
	return fmt.Sprintf("roster error [%s]: %v", e.Path, e.Err)
}

func (e *RosterError) Unwrap() error {
	return e.Err
}

// NewRosterError creates a new RosterError.
func NewRosterError(path string, expected, found int, err error) *RosterError {
	return &RosterError{
		Path:     path,
		Expected: expected,
		Found:    found,
		Err:      err,
	}
}

// TemplateError represents a malformed item template record.
type TemplateError struct {
	Path  string
	Line  int
	Field string
	Err   error
}

func (e *TemplateError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("template error [%s:%d] %s: %v", e.Path, e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("template error [%s] %s: %v", e.Path, e.Field, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// NewTemplateError creates a new TemplateError wrapping ErrTemplateInvalid
// when err is nil.
func NewTemplateError(path string, line int, field string, err error) *TemplateError {
	if err == nil {
		err = ErrTemplateInvalid
	}
	return &TemplateError{
		Path:  path,
		Line:  line,
		Field: field,
		Err:   err,
	}
}

// InvariantError reports a broken game-state invariant.
type InvariantError struct {
	Rule   string
	Team   string
	Detail string
}

func (e *InvariantError) Error() string {
	if e.Team != "" {
		return fmt.Sprintf("invariant [%s] team %s: %s", e.Rule, e.Team, e.Detail)
	}
	return fmt.Sprintf("invariant [%s]: %s", e.Rule, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// NewInvariantError creates a new InvariantError.
func NewInvariantError(rule, team, detail string) *InvariantError {
	return &InvariantError{
		Rule:   rule,
		Team:   team,
		Detail: detail,
	}
}

// PhaseError reports a phase method invoked from the wrong phase.
type PhaseError struct {
	Want string
	Got  string
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase error: want %s, episode is in %s", e.Want, e.Got)
}

func (e *PhaseError) Unwrap() error {
	return ErrPhaseOrder
}

// NewPhaseError creates a new PhaseError.
func NewPhaseError(want, got string) *PhaseError {
	return &PhaseError{Want: want, Got: got}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
