package repository

import "errors"

var (
	// ErrEntryNotFound indicates the history entry does not exist for the client
	ErrEntryNotFound = errors.New("history entry not found")

	// ErrInvalidEntry indicates an entry is missing required fields
	ErrInvalidEntry = errors.New("invalid history entry")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
