package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnknownType  = errors.New("unknown event type")
	ErrMissingField = errors.New("missing required field")
)
