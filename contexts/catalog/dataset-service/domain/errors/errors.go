package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")

	ErrDatasetNotFound = errors.New("dataset not found")
	ErrFileNotFound    = errors.New("file not found")
)
