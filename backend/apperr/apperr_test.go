package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransient(t *testing.T) {
	assert.NoError(t, Transient("noop", nil))

	cause := errors.New("connection refused")
	err := Transient("load stats", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
	assert.True(t, IsCode(err, CodeStoreUnavailable))
	assert.Equal(t, "load stats: connection refused", err.Error())

	// kinds are preserved through further wrapping
	validation := Validation("bad status %q", "done")
	assert.Same(t, validation, Transient("record", validation))
	wrapped := fmt.Errorf("outer: %w", validation)
	assert.Equal(t, http.StatusBadRequest, StatusOf(wrapped))
	assert.Equal(t, CodeValidation, CodeOf(wrapped))
}

func TestPlainErrorsHaveNoKind(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Empty(t, CodeOf(err))
	assert.False(t, IsCode(nil, CodeValidation))
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "question 3 not found", NotFound("question %d not found", 3).Error())
	assert.Equal(t, "forbidden", New(http.StatusForbidden, CodeForbidden, nil).Error())
	assert.Equal(t, "api error (418)", New(http.StatusTeapot, "", nil).Error())
}
