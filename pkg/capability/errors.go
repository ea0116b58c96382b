package capability

import "errors"

var (
	// ErrEmptyResponse indicates the provider returned no completion choices.
	ErrEmptyResponse = errors.New("capability returned empty response")
	// ErrEmptyInput indicates empty text was submitted for embedding.
	ErrEmptyInput = errors.New("embedding input must not be empty")
	// ErrWrongDimension indicates the provider returned a vector that does not
	// match the configured embedding dimension.
	ErrWrongDimension = errors.New("embedding dimension mismatch")
)
