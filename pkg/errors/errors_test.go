package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading event: %w", ErrNotFound)
	got := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, got, "internal server error: boom")
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "week_offset must be an integer")
	assert.Equal(t, "week_offset must be an integer", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, ErrValidation.Code, Clone(ErrValidation, "").Code)
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, ErrUpstream.Code, ErrUpstream.Status, "calendar provider unavailable")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.Status)
}

func TestClonesMatchPredefinedErrors(t *testing.T) {
	err := fmt.Errorf("get event: %w", Clone(ErrNotFound, "event not found"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.False(t, errors.Is(errors.New("plain"), ErrNotFound))
}

func TestWrapAs(t *testing.T) {
	cause := errors.New("bad json")
	err := WrapAs(cause, ErrValidation, "invalid payload")
	assert.Equal(t, ErrValidation.Code, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "invalid payload", err.Message)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, ErrUpstream.Message, WrapAs(cause, ErrUpstream, "").Message)
}
