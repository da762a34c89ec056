package repository

import "errors"

var (
	// ErrNotFound covers both a missing row and a row owned by another
	// user; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict means a conditional timer update matched no row:
	// a concurrent action changed the state first.
	ErrStateConflict = errors.New("timer state changed concurrently")
)
