package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aadhaar.jpg")
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	img, err := NewLocalFileFetcher(0).FetchImage(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.Name != "aadhaar.jpg" {
		t.Errorf("Expected name aadhaar.jpg, got %s", img.Name)
	}
	if img.ContentType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", img.ContentType)
	}

	if _, err := NewLocalFileFetcher(4).FetchImage(context.Background(), path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
	if _, err := NewLocalFileFetcher(0).FetchImage(context.Background(), filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParseBlobRef(t *testing.T) {
	tests := []struct {
		ref       string
		container string
		blob      string
		wantErr   bool
	}{
		{"uploads/card.png", "uploads", "card.png", false},
		{"/uploads/2024/05/card.png", "uploads", "2024/05/card.png", false},
		{"uploads", "", "", true},
		{"uploads/", "", "", true},
		{"/card.png", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			container, blob, err := ParseBlobRef(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if container != tt.container || blob != tt.blob {
				t.Errorf("Expected %s/%s, got %s/%s", tt.container, tt.blob, container, blob)
			}
		})
	}
}

func TestNewAzureStorage_InvalidKey(t *testing.T) {
	if _, err := NewAzureStorage("account", "not base64!", 0); err == nil {
		t.Error("Expected error for malformed shared key")
	}
}
