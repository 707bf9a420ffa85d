package core

import "errors"

// Common errors.
var (
	ErrReadOnly = errors.New("store is in read-only mode")

	// ErrDuplicateName is returned when creating a profile whose name is taken.
	ErrDuplicateName = errors.New("profile already exists")

	// ErrProfileNotFound is returned by operations that cannot fall back
	// to a soft failure, such as creating a version.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidOperation is returned when deleting the active or the only
	// version of a profile.
	ErrInvalidOperation = errors.New("invalid operation")
)
