package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalFileFetcher reads document images from the local filesystem
type LocalFileFetcher struct {
	maxBytes int64
}

// NewLocalFileFetcher creates a filesystem image source
func NewLocalFileFetcher(maxBytes int64) *LocalFileFetcher {
	return &LocalFileFetcher{maxBytes: maxBytes}
}

func (l *LocalFileFetcher) FetchImage(ctx context.Context, path string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	data, err := readLimited(f, l.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return newImage(filepath.Base(path), data), nil
}
