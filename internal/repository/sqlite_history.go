package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-id-inspector/pkg/models"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS detection_history (
	id          TEXT PRIMARY KEY,
	client_id   TEXT NOT NULL,
	file_name   TEXT NOT NULL,
	result      TEXT NOT NULL,
	confidence  REAL NOT NULL,
	details     TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_client_created
	ON detection_history (client_id, created_at DESC);
`

// DefaultListLimit caps List when no limit is given
const DefaultListLimit = 50

// SQLiteHistory is a HistoryRepository backed by a local SQLite file
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens (creating if needed) the history database at path
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to apply schema: %v", ErrRepositoryUnavailable, err)
	}
	return &SQLiteHistory{db: db}, nil
}

func (r *SQLiteHistory) Save(ctx context.Context, entry *models.HistoryEntry) error {
	if entry == nil || entry.ID == "" || entry.ClientID == "" {
		return ErrInvalidEntry
	}
	details := string(entry.Details)
	if details == "" {
		details = "null"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO detection_history (id, client_id, file_name, result, confidence, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ClientID, entry.FileName, entry.Result, entry.Confidence, details,
		entry.Timestamp.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

func (r *SQLiteHistory) List(ctx context.Context, clientID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, file_name, result, confidence, created_at
		 FROM detection_history
		 WHERE client_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		clientID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e       models.HistoryEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.ClientID, &e.FileName, &e.Result, &e.Confidence, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Timestamp = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteHistory) Get(ctx context.Context, clientID, id string) (*models.HistoryEntry, error) {
	var (
		e       models.HistoryEntry
		details string
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, file_name, result, confidence, details, created_at
		 FROM detection_history
		 WHERE id = ? AND client_id = ?`,
		id, clientID,
	).Scan(&e.ID, &e.ClientID, &e.FileName, &e.Result, &e.Confidence, &details, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}

	e.Details = []byte(details)
	e.Timestamp = time.Unix(0, created).UTC()
	return &e, nil
}

func (r *SQLiteHistory) Close() error {
	return r.db.Close()
}
