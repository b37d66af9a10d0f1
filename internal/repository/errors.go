package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStaleState is returned when a conditional update finds the entity
	// in a different state than expected.
	ErrStaleState = errors.New("entity state changed")

	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("entity already exists")
)
