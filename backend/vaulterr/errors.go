package vaulterr

import (
	"errors"
	"net/http"
)

var ValidationError = errors.New("invalid request")
var NotFoundError = errors.New("not found")
var AuthError = errors.New("authentication failed")
var PermissionError = errors.New("permission denied")
var InternalError = errors.New("internal error")

// DecryptionError is returned for any failed decryption, whether the password
// was wrong or the data was corrupted. It also matches AuthError.
var DecryptionError error = decryptionError{}

type decryptionError struct{}

func (decryptionError) Error() string {
	return "invalid password or corrupted data"
}

func (decryptionError) Is(target error) bool {
	return target == AuthError
}

// StatusCode maps an error from the vault packages to the HTTP status a
// handler should respond with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, DecryptionError), errors.Is(err, ValidationError):
		return http.StatusBadRequest
	case errors.Is(err, NotFoundError):
		return http.StatusNotFound
	case errors.Is(err, AuthError):
		return http.StatusUnauthorized
	case errors.Is(err, PermissionError):
		return http.StatusForbidden
	}

	return http.StatusInternalServerError
}

// Message returns the text that is safe to show to a caller. Errors outside
// of the taxonomy are reported as a generic internal error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, DecryptionError):
		return DecryptionError.Error()
	case errors.Is(err, ValidationError),
		errors.Is(err, NotFoundError),
		errors.Is(err, AuthError),
		errors.Is(err, PermissionError):
		return err.Error()
	}

	return InternalError.Error()
}
