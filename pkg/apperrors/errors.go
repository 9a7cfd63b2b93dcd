package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrObjectNotFound = errors.New("object not found in storage")
	ErrMissingConfig  = errors.New("missing required configuration")
	ErrEmptyResponse  = errors.New("empty response from completion service")
)
