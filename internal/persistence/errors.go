package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique key such as an id or email is already taken.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record is missing required fields
	// or references data that does not exist.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
