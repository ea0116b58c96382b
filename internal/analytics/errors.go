package analytics

import "errors"

// ErrInvalidRequest reports a malformed analytics request.
var ErrInvalidRequest = errors.New("invalid request")
