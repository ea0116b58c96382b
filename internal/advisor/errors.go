package advisor

import (
	"errors"
	"net/http"
)

// ErrInvalidQuery indicates a malformed ask request.
var ErrInvalidQuery = errors.New("invalid advisor query")

// MapHTTPStatus maps advisor errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
