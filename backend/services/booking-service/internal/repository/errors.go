package repository

import "errors"

var (
	// ErrNotFound indicates a missing row.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict indicates the row changed since it was read.
	ErrVersionConflict = errors.New("version conflict")
)
