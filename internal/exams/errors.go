package exams

import "errors"

var (
	// ErrUnknownTemplate signals a template name absent from the catalog.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrNotFound signals a missing quiz set or attempt.
	ErrNotFound = errors.New("quiz set not found")

	// ErrNotReady signals an operation on a quiz set that has not completed
	// generation yet.
	ErrNotReady = errors.New("quiz set not ready")
)
