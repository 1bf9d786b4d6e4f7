package services

import "errors"

var (
	// ErrNotFound is returned when a record does not exist, is deleted, or
	// does not belong to the caller.
	ErrNotFound = errors.New("not found")
	// ErrNotAllowed is returned when a record exists but is not in a state
	// that permits the requested action.
	ErrNotAllowed = errors.New("action not allowed")
)
