package documents

import "errors"

var (
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput signals a bad upload or request payload.
	ErrInvalidInput = errors.New("invalid input")
)
