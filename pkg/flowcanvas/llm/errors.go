package llm

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies backend failures into a small taxonomy so the
// core can react uniformly regardless of vendor.
type ErrorKind string

// Error kinds.
const (
	KindValidation    ErrorKind = "validation"
	KindRateLimit     ErrorKind = "rate_limit"
	KindAuth          ErrorKind = "auth"
	KindModelNotFound ErrorKind = "model_not_found"
	KindSafetyBlocked ErrorKind = "safety_blocked"
	KindInternal      ErrorKind = "internal"
)

// Error is a classified failure from an LLM backend.
type Error struct {
	// Kind is the taxonomy bucket.
	Kind ErrorKind
	// Message is the human-readable failure description.
	Message string
	// Retryable indicates the failure is transient (rate limit,
	// overload) and a later retry may succeed.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates a classified error.
func NewError(kind ErrorKind, message string, retryable bool) *Error {
	return &Error{Kind: kind, Message: message, Retryable: retryable}
}

// kindFromStatus maps an HTTP status code to an error kind.
func kindFromStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound:
		return KindModelNotFound
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindInternal
	}
}

// retryableStatus reports whether an HTTP status indicates a
// transient failure.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
