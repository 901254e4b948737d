package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located or is soft-deleted.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrInvalidValue indicates a column constraint such as a length limit rejected the write.
	ErrInvalidValue = errors.New("repository: invalid value")
)
