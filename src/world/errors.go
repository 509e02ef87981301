package world

import "errors"

var (
	// ErrValidation marks caller mistakes (e.g. room coordinates outside the plane).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks lookups for things that do not exist.
	ErrNotFound = errors.New("not found")
)
