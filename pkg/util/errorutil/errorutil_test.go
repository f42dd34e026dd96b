package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	t.Run("passes domain errors through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("update ticket: %w", NewEditLocked("ticket is completed"))
		de := ToDomainError(wrapped)
		assert.Equal(t, CodeEditLocked, de.Code)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	})

	t.Run("hides unknown errors behind internal error", func(t *testing.T) {
		de := ToDomainError(errors.New("connection reset"))
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
		assert.Equal(t, "internal server error", de.Message)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
		assert.NoError(t, MapError(nil))
	})
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewUnauthorized("bad token"), CodeAuthInvalid, http.StatusUnauthorized},
		{NewAuthExpired("expired"), CodeAuthExpired, http.StatusUnauthorized},
		{NewForbidden("nope"), CodeForbidden, http.StatusForbidden},
		{NewForbiddenSelfAction("self"), CodeForbiddenSelf, http.StatusForbidden},
		{NewNotFound("ticket", nil), CodeNotFound, http.StatusNotFound},
		{NewInvalidUsername("bad"), CodeInvalidUsername, http.StatusBadRequest},
		{NewWeakPassword("short"), CodeWeakPassword, http.StatusBadRequest},
		{NewValidationError("missing", nil), CodeValidationFailed, http.StatusBadRequest},
		{NewUnknownModule("Foo"), CodeUnknownModule, http.StatusBadRequest},
		{NewUsernameTaken("alice"), CodeUsernameTaken, http.StatusConflict},
		{NewLastAdmin("alice"), CodeLastAdmin, http.StatusConflict},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		assert.Equal(t, tc.code, de.Code)
		assert.Equal(t, tc.status, de.HTTPStatus, tc.code)
		assert.True(t, HasCode(tc.err, tc.code))
	}
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}
