package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindStore Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "state_conflict"
	case KindAuth:
		return "auth"
	case KindConfig:
		return "config"
	default:
		return "store"
	}
}

// Error is a classified domain error whose message is safe to show to users
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ValidationError reports the first invalid field of an input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a field-level validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Not found
var (
	ErrBookNotFound        = newError(KindNotFound, "Book not found")
	ErrMemberNotFound      = newError(KindNotFound, "Member not found")
	ErrTransactionNotFound = newError(KindNotFound, "Transaction not found")
	ErrBookOrMemberMissing = newError(KindNotFound, "Book or member not found")
)

// State conflicts
var (
	ErrBookUnavailable         = newError(KindConflict, "Book is already borrowed")
	ErrInvalidTransactionState = newError(KindConflict, "Invalid transaction for return")
	ErrMemberInactive          = newError(KindConflict, "Member is inactive")
	ErrBookBorrowed            = newError(KindConflict, "Cannot delete a borrowed book")
	ErrMemberHasLoans          = newError(KindConflict, "Member still has borrowed books")
	ErrDuplicateEmail          = newError(KindConflict, "Email already registered")
)

// Auth
var (
	ErrMissingCredentials = newError(KindValidation, "No valid credentials")
	ErrInvalidCredentials = newError(KindAuth, "Invalid credentials")
	ErrTokenExpired       = newError(KindAuth, "Session expired")
	ErrTokenInvalid       = newError(KindAuth, "Invalid session")
)

// Config
var (
	ErrSecretKeyMissing = newError(KindConfig, "Internal server error")
)

// StoreError wraps an unexpected persistence failure
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// KindOf classifies err; unknown errors are store faults
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	return KindStore
}

// PublicMessage returns the message to render for err
func PublicMessage(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return fallback
}
