package vaulterr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusCode(nil))
	assert.Equal(t, http.StatusBadRequest,
		StatusCode(fmt.Errorf("%w: file too large", ValidationError)))
	assert.Equal(t, http.StatusBadRequest, StatusCode(DecryptionError))
	assert.Equal(t, http.StatusNotFound,
		StatusCode(fmt.Errorf("%w: file abc", NotFoundError)))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(AuthError))
	assert.Equal(t, http.StatusForbidden, StatusCode(PermissionError))
	assert.Equal(t, http.StatusInternalServerError,
		StatusCode(errors.New("disk on fire")))
}

func TestDecryptionErrorIsAuthError(t *testing.T) {
	wrapped := fmt.Errorf("decrypt: %w", DecryptionError)
	assert.True(t, errors.Is(wrapped, DecryptionError))
	assert.True(t, errors.Is(wrapped, AuthError))
	assert.False(t, errors.Is(AuthError, DecryptionError))
}

func TestMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal error",
		Message(errors.New("crypto/aes: invalid key size 7")))
	assert.Equal(t, "invalid password or corrupted data",
		Message(fmt.Errorf("wrapped: %w", DecryptionError)))
	assert.Equal(t, "not found: file abc",
		Message(fmt.Errorf("%w: file abc", NotFoundError)))
}
