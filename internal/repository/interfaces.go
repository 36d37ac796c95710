package repository

import (
	"context"

	"go-id-inspector/pkg/models"
)

// HistoryRepository stores past detection outcomes per client
type HistoryRepository interface {
	// Save persists a new entry
	Save(ctx context.Context, entry *models.HistoryEntry) error

	// List returns a client's entries, newest first
	List(ctx context.Context, clientID string, limit int) ([]models.HistoryEntry, error)

	// Get returns one entry owned by the client, including details
	Get(ctx context.Context, clientID, id string) (*models.HistoryEntry, error)

	Close() error
}
