package errors

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingReadModel = errors.New("analytics read model not configured")
)
