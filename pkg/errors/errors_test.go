package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{Validation("bad input", nil), http.StatusBadRequest},
		{DuplicateEmail("a@b.com"), http.StatusConflict},
		{InvalidCredentials(), http.StatusUnauthorized},
		{Unauthorized("nope"), http.StatusUnauthorized},
		{InvalidToken(nil), http.StatusUnauthorized},
		{TokenExpired(), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("patient", nil), http.StatusNotFound},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestIs(t *testing.T) {
	err := NotFound("invoice", nil)
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrForbidden))
	assert.False(t, Is(errors.New("plain"), ErrNotFound))
	assert.False(t, Is(nil, ErrNotFound))
}

func TestInvalidCredentialsMessageIsGeneric(t *testing.T) {
	// The message must not reveal whether the email exists.
	assert.NotContains(t, InvalidCredentials().Message, "email")
	assert.NotContains(t, InvalidCredentials().Message, "password")
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("mongo: connection refused")
	err := Internal(cause)
	assert.ErrorContains(t, err, "connection refused")
}
