package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrRuleViolation = errors.New("business rule violation")
	ErrConflict      = errors.New("conflict")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// RuleError is an expected business-rule rejection. It carries every
// violated rule so callers can render the complete list at once.
// Unlike infrastructure failures it is never logged as a fault.
type RuleError struct {
	Reasons []string
}

func (e *RuleError) Error() string {
	return "rejected: " + strings.Join(e.Reasons, "; ")
}

func (e *RuleError) Unwrap() error { return ErrRuleViolation }

// NewRuleError creates a RuleError from one or more reasons.
func NewRuleError(reasons ...string) *RuleError {
	return &RuleError{Reasons: reasons}
}

// RuleReasons extracts the itemized reasons if err is a business-rule
// rejection. Returns nil, false for any other error.
func RuleReasons(err error) ([]string, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reasons, true
	}
	return nil, false
}
