package knowledge

import (
	"errors"
	"net/http"
)

// Domain errors for knowledge operations.
var (
	ErrNotFound       = errors.New("knowledge entry not found")
	ErrDuplicate      = errors.New("knowledge entry already exists")
	ErrInvalidRequest = errors.New("invalid request")
)

// MapHTTPStatus maps knowledge domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
