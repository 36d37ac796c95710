package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// ErrTooLarge is returned when a source holds more bytes than allowed
var ErrTooLarge = errors.New("image exceeds maximum size")

// Image is a raw document image pulled from a source
type Image struct {
	Name        string
	Data        []byte
	ContentType string
}

// ImageFetcher pulls raw image bytes by reference. The reference is a
// URL, a file path or a container/blob pair depending on the source.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) (*Image, error)
}

// readLimited reads at most limit bytes and fails if the stream is longer
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}

func newImage(name string, data []byte) *Image {
	return &Image{
		Name:        name,
		Data:        data,
		ContentType: mimetype.Detect(data).String(),
	}
}
