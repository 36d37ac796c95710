package repository

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-id-inspector/pkg/models"
)

func newTestHistory(t *testing.T) *SQLiteHistory {
	t.Helper()
	repo, err := NewSQLiteHistory(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteHistory_SaveListGet(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	entries := []models.HistoryEntry{
		{ID: "a", ClientID: "client-1", FileName: "first.png", Result: "Original", Confidence: 100, Details: json.RawMessage(`{"is_authentic":true}`), Timestamp: base},
		{ID: "b", ClientID: "client-1", FileName: "second.jpg", Result: "Tampered", Confidence: 55, Details: json.RawMessage(`{"is_authentic":false}`), Timestamp: base.Add(time.Minute)},
		{ID: "c", ClientID: "client-2", FileName: "other.png", Result: "Original", Confidence: 90, Timestamp: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		if err := repo.Save(ctx, &entries[i]); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	list, err := repo.List(ctx, "client-1", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(list))
	}
	if list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("Expected newest first, got %s then %s", list[0].ID, list[1].ID)
	}
	if list[0].Details != nil {
		t.Error("Expected list entries without details")
	}
	if !list[0].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("Unexpected timestamp %v", list[0].Timestamp)
	}

	got, err := repo.Get(ctx, "client-1", "b")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Confidence != 55 || got.Result != "Tampered" {
		t.Errorf("Unexpected entry %+v", got)
	}
	if string(got.Details) != `{"is_authentic":false}` {
		t.Errorf("Unexpected details %s", got.Details)
	}
}

func TestSQLiteHistory_ClientIsolation(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()

	entry := models.HistoryEntry{ID: "x", ClientID: "owner", FileName: "card.png", Result: "Original", Confidence: 80, Timestamp: time.Now()}
	if err := repo.Save(ctx, &entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := repo.Get(ctx, "intruder", "x"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}
	list, err := repo.List(ctx, "intruder", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no entries, got %d", len(list))
	}
}

func TestSQLiteHistory_Limit(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"1", "2", "3", "4"} {
		e := models.HistoryEntry{ID: id, ClientID: "c", FileName: "f.png", Result: "Original", Confidence: 70, Timestamp: base.Add(time.Duration(i) * time.Second)}
		if err := repo.Save(ctx, &e); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	list, err := repo.List(ctx, "c", 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "4" {
		t.Errorf("Expected the 2 newest entries, got %+v", list)
	}
}

func TestSQLiteHistory_InvalidEntry(t *testing.T) {
	repo := newTestHistory(t)
	tests := []struct {
		name  string
		entry *models.HistoryEntry
	}{
		{"nil", nil},
		{"missing id", &models.HistoryEntry{ClientID: "c"}},
		{"missing client", &models.HistoryEntry{ID: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Save(context.Background(), tt.entry); !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("Expected ErrInvalidEntry, got %v", err)
			}
		})
	}
}

func TestSQLiteHistory_DuplicateID(t *testing.T) {
	repo := newTestHistory(t)
	e := models.HistoryEntry{ID: "dup", ClientID: "c", FileName: "f.png", Result: "Original", Confidence: 70, Timestamp: time.Now()}
	if err := repo.Save(context.Background(), &e); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(context.Background(), &e); err == nil {
		t.Error("Expected duplicate id to fail")
	}
}
