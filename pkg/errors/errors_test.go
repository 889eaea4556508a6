package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetail_DoesNotMutateSentinel(t *testing.T) {
	derived := ErrConflict.WithMessage("This tag already exists").WithDetail("name", "phone")

	assert.Empty(t, ErrConflict.Details)
	assert.Equal(t, "phone", derived.Details["name"])
	assert.True(t, errors.Is(derived, ErrConflict))
	assert.False(t, errors.Is(derived, ErrValidation))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal))

	cause := fmt.Errorf("db down")
	wrapped := Wrap(cause, ErrInternal)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(wrapped))

	validation := ErrValidation.WithMessage("Tag name cannot be empty")
	assert.Same(t, validation, Wrap(fmt.Errorf("ctx: %w", validation), ErrInternal))
}

func TestRetryability(t *testing.T) {
	assert.False(t, ErrValidation.IsRetryable())
	assert.False(t, ErrNotConfigured.IsRetryable())
	assert.True(t, ErrServiceUnavailable.IsRetryable())
	assert.True(t, ErrValidation.AsRetryable().IsRetryable())
	assert.True(t, ErrInternal.AsFatal().IsFatal())
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrConflict.WithMessage("This tag already exists").WithDetail("name", "phone"))
	assert.Equal(t, "This tag already exists", resp.Error)
	assert.Equal(t, "CONFLICT", resp.ErrorCode)
	assert.Equal(t, map[string]interface{}{"name": "phone"}, resp.Details)

	plain := ToErrorResponse(fmt.Errorf("boom"))
	assert.Equal(t, "INTERNAL_ERROR", plain.ErrorCode)
	assert.Nil(t, plain.Details)
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("kaboom")
	require.Error(t, err)

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.IsFatal())
	assert.Equal(t, true, appErr.Details["panic"])
	assert.Contains(t, err.Error(), "kaboom")
}
