package companies

import (
	"errors"
	"net/http"
)

// Domain errors for company and user operations.
var (
	ErrNotFound       = errors.New("company not found")
	ErrDuplicate      = errors.New("company already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserDuplicate  = errors.New("user email already registered")
	ErrInvalidRequest = errors.New("invalid request")
)

// MapHTTPStatus maps company domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrUserDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
