package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is_MatchesOnKind(t *testing.T) {
	a := New(NotFound, "user not found")
	b := New(NotFound, "goal not found")
	c := New(Conflict, "already exists")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(ServiceUnavailable, "AI service down", cause)

	assert.ErrorIs(t, wrapped, cause)
}

func TestWithField_ForcesValidationFailedKind(t *testing.T) {
	err := New(Internal, "should not matter").WithField("amount", "must be positive")

	assert.Equal(t, ValidationFailed, err.Kind)
	assert.Len(t, err.Fields, 1)
	assert.Equal(t, "amount", err.Fields[0].Field)
}

func TestWithFields_Appends(t *testing.T) {
	err := New(ValidationFailed, "bad request").
		WithField("a", "required").
		WithFields([]FieldError{{Field: "b", Message: "too long"}})

	assert.Len(t, err.Fields, 2)
}

func TestOf_ExtractsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", New(Conflict, "duplicate"))

	e, ok := Of(wrapped)
	assert.True(t, ok)
	assert.Equal(t, Conflict, e.Kind)

	_, ok = Of(errors.New("plain error"))
	assert.False(t, ok)
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(New(NotFound, "")))
	assert.True(t, IsConflict(New(Conflict, "")))
	assert.True(t, IsUnauthorized(New(Unauthorized, "")))
	assert.True(t, IsForbidden(New(Forbidden, "")))
	assert.True(t, IsValidationFailed(New(ValidationFailed, "")))
	assert.True(t, IsServiceUnavailable(New(ServiceUnavailable, "")))
	assert.False(t, IsNotFound(New(Conflict, "")))
}

func TestKind_HTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Unauthorized:         401,
		Forbidden:            403,
		NotFound:             404,
		Conflict:             409,
		AlreadySubmitted:     409,
		AlreadyCompleted:     409,
		InvalidAmount:        400,
		InvalidChoice:        400,
		InvalidStarter:       400,
		InsufficientFunds:    400,
		InsufficientQuantity: 400,
		NoActiveMission:      400,
		ValidationFailed:     400,
		ServiceUnavailable:   503,
		Internal:             500,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), "kind %s", kind)
	}
}

func TestError_ErrorString(t *testing.T) {
	plain := New(NotFound, "user not found")
	assert.Equal(t, "NOT_FOUND: user not found", plain.Error())

	wrapped := Wrap(ServiceUnavailable, "AI down", errors.New("timeout"))
	assert.Contains(t, wrapped.Error(), "timeout")
}
