package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies billing errors so the HTTP layer can map them to
// statuses without inspecting storage error text.
type ErrorKind string

const (
	ErrInvalidRequest     ErrorKind = "invalid_request"
	ErrNotFound           ErrorKind = "not_found"
	ErrInvalidBillingType ErrorKind = "invalid_billing_type"
	ErrNotSettled         ErrorKind = "not_settled"
	ErrForbidden          ErrorKind = "forbidden"
	ErrInvalidTransition  ErrorKind = "invalid_transition"
	ErrStorageConflict    ErrorKind = "storage_conflict"
	ErrInternal           ErrorKind = "internal"
)

// Error carries a classification kind alongside a safe, client-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// E builds a classified error with a formatted message.
func E(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause. The cause is preserved for logs but the
// message is what clients see.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the kind from any error in the chain, defaulting to internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
