package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Card pipeline failure kinds. Every error produced while building or
// materializing a card unwraps to exactly one of these.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrGeneration        = errors.New("generation service error")
	ErrAudioSynthesis    = errors.New("audio synthesis error")
	ErrMutation          = errors.New("mutation error")
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

// CredentialError reports the first required configuration value that is
// absent. Label is the human-readable name shown to the user.
type CredentialError struct {
	Key   string
	Label string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("missing credential: %s", e.Key)
}

func (e *CredentialError) Unwrap() error { return ErrMissingCredential }

// StageError ties an underlying failure to one of the card pipeline kinds.
// errors.Is matches both the kind sentinel and the wrapped cause.
type StageError struct {
	Kind error
	Op   string
	Err  error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewGenerationError wraps a generation service failure.
func NewGenerationError(op string, err error) *StageError {
	return &StageError{Kind: ErrGeneration, Op: op, Err: err}
}

// NewAudioError wraps a speech synthesis failure.
func NewAudioError(op string, err error) *StageError {
	return &StageError{Kind: ErrAudioSynthesis, Op: op, Err: err}
}

// NewMutationError wraps a document or asset store failure.
func NewMutationError(op string, err error) *StageError {
	return &StageError{Kind: ErrMutation, Op: op, Err: err}
}
