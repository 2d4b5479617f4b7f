// Package apperrors defines the domain error taxonomy shared by every
// service and repository, and its mapping to the HTTP envelope.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure independent of its HTTP representation.
type Kind string

const (
	Unauthorized         Kind = "UNAUTHORIZED"
	Forbidden            Kind = "FORBIDDEN"
	NotFound             Kind = "NOT_FOUND"
	Conflict             Kind = "CONFLICT"
	AlreadySubmitted     Kind = "ALREADY_SUBMITTED"
	AlreadyCompleted     Kind = "ALREADY_COMPLETED"
	InvalidAmount        Kind = "INVALID_AMOUNT"
	InvalidChoice        Kind = "INVALID_CHOICE"
	InvalidStarter       Kind = "INVALID_STARTER"
	InsufficientFunds    Kind = "INSUFFICIENT_FUNDS"
	InsufficientQuantity Kind = "INSUFFICIENT_QUANTITY"
	NoActiveMission      Kind = "NO_ACTIVE_MISSION"
	ValidationFailed     Kind = "VALIDATION_FAILED"
	ServiceUnavailable   Kind = "SERVICE_UNAVAILABLE"
	Internal             Kind = "INTERNAL"
)

// FieldError carries one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single error type every component in internal/service and
// internal/repository is expected to return for an expected failure mode.
// Anything else surfacing at the HTTP boundary is folded into Internal.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can do errors.Is(err, apperrors.New(apperrors.NotFound, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an *Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithField attaches one field-level validation error and forces Kind to
// ValidationFailed.
func (e *Error) WithField(field, message string) *Error {
	e.Kind = ValidationFailed
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// WithFields attaches multiple field-level validation errors.
func (e *Error) WithFields(fields []FieldError) *Error {
	e.Kind = ValidationFailed
	e.Fields = append(e.Fields, fields...)
	return e
}

// Of returns the *Error wrapped in err, if any.
func Of(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	e, ok := Of(err)
	return ok && e.Kind == kind
}

// IsNotFound, IsConflict etc. are small conveniences mirroring the
// teacher's IsXxx() checkers on its DomainError.
func IsNotFound(err error) bool           { return Is(err, NotFound) }
func IsConflict(err error) bool           { return Is(err, Conflict) }
func IsUnauthorized(err error) bool       { return Is(err, Unauthorized) }
func IsForbidden(err error) bool          { return Is(err, Forbidden) }
func IsValidationFailed(err error) bool   { return Is(err, ValidationFailed) }
func IsServiceUnavailable(err error) bool { return Is(err, ServiceUnavailable) }

// HTTPStatus returns the HTTP status code each Kind maps to at the API
// boundary.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthorized:
		return 401
	case Forbidden:
		return 403
	case NotFound:
		return 404
	case Conflict, AlreadySubmitted, AlreadyCompleted:
		return 409
	case InvalidAmount, InvalidChoice, InvalidStarter, InsufficientFunds,
		InsufficientQuantity, NoActiveMission, ValidationFailed:
		return 400
	case ServiceUnavailable:
		return 503
	default:
		return 500
	}
}
