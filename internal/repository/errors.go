package repository

import "errors"

var (
	// ErrNotFound indicates the query matched no rows.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("repository: duplicate entry")
)
