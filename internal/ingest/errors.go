package ingest

import "errors"

// Pipeline errors that fail a document run.
var (
	ErrUnknownRiskLevel = errors.New("unknown risk level in extraction output")
	ErrNoText           = errors.New("no text could be extracted")
)
