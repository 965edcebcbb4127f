// Package apperr defines the error kinds surfaced to callers. Every error a
// service returns to a handler wraps exactly one of these sentinels so the
// transport layer can pick a status code with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput covers malformed or missing fields, unknown commands
	// and failed business validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when the caller is unknown or lacks the role.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrObjectNotFound is returned when a target, parent, user or settings
	// record is missing.
	ErrObjectNotFound = errors.New("object not found")
	// ErrExternalAPI wraps transport failures and unexpected statuses from
	// the AC vendor API.
	ErrExternalAPI = errors.New("external api error")
)

func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrObjectNotFound, fmt.Sprintf(format, args...))
}

func ExternalAPI(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrExternalAPI, fmt.Sprintf(format, args...))
}

// HTTPStatus maps an error to the status code reported to API clients.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExternalAPI):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
