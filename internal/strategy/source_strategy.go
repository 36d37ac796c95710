package strategy

import (
	"context"

	apperrors "go-id-inspector/internal/errors"
	"go-id-inspector/internal/storage"
	"go-id-inspector/pkg/validation"
)

// SourceStrategy resolves a reference into validated document bytes
type SourceStrategy interface {
	Resolve(ctx context.Context, ref string) (*storage.Image, error)
	GetStrategyName() string
}

// URLSourceStrategy fetches documents from allow-listed HTTP(S) URLs
type URLSourceStrategy struct {
	urls    *validation.URLValidator
	uploads *validation.UploadValidator
	fetcher storage.ImageFetcher
}

// NewURLSourceStrategy creates a new URL source strategy
func NewURLSourceStrategy(urls *validation.URLValidator, uploads *validation.UploadValidator, fetcher storage.ImageFetcher) SourceStrategy {
	return &URLSourceStrategy{
		urls:    urls,
		uploads: uploads,
		fetcher: fetcher,
	}
}

// Resolve validates the URL before fetching and the bytes after
func (s *URLSourceStrategy) Resolve(ctx context.Context, ref string) (*storage.Image, error) {
	if err := s.urls.ValidateImageURL(ref); err != nil {
		return nil, err
	}
	return fetchAndValidate(ctx, s.fetcher, s.uploads, ref)
}

// GetStrategyName returns the strategy name
func (s *URLSourceStrategy) GetStrategyName() string {
	return "url"
}

// BlobSourceStrategy reads documents from blob storage by "container/blob"
type BlobSourceStrategy struct {
	uploads *validation.UploadValidator
	fetcher storage.ImageFetcher
}

// NewBlobSourceStrategy creates a new blob source strategy
func NewBlobSourceStrategy(uploads *validation.UploadValidator, fetcher storage.ImageFetcher) SourceStrategy {
	return &BlobSourceStrategy{
		uploads: uploads,
		fetcher: fetcher,
	}
}

// Resolve checks the reference shape before downloading
func (s *BlobSourceStrategy) Resolve(ctx context.Context, ref string) (*storage.Image, error) {
	if _, _, err := storage.ParseBlobRef(ref); err != nil {
		return nil, apperrors.NewValidationError("Invalid blob reference", err)
	}
	return fetchAndValidate(ctx, s.fetcher, s.uploads, ref)
}

// GetStrategyName returns the strategy name
func (s *BlobSourceStrategy) GetStrategyName() string {
	return "blob"
}

// LocalSourceStrategy reads documents from the local filesystem
type LocalSourceStrategy struct {
	uploads *validation.UploadValidator
	fetcher storage.ImageFetcher
}

// NewLocalSourceStrategy creates a new local file strategy
func NewLocalSourceStrategy(uploads *validation.UploadValidator, fetcher storage.ImageFetcher) SourceStrategy {
	return &LocalSourceStrategy{
		uploads: uploads,
		fetcher: fetcher,
	}
}

// Resolve reads the file and validates its content
func (s *LocalSourceStrategy) Resolve(ctx context.Context, ref string) (*storage.Image, error) {
	if ref == "" {
		return nil, apperrors.NewValidationError("File path cannot be empty", nil)
	}
	return fetchAndValidate(ctx, s.fetcher, s.uploads, ref)
}

// GetStrategyName returns the strategy name
func (s *LocalSourceStrategy) GetStrategyName() string {
	return "local"
}

func fetchAndValidate(ctx context.Context, fetcher storage.ImageFetcher, uploads *validation.UploadValidator, ref string) (*storage.Image, error) {
	img, err := fetcher.FetchImage(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeoutError("Timed out fetching image", err)
		}
		return nil, apperrors.NewNetworkError("Failed to fetch image", err)
	}

	contentType, err := uploads.ValidateUpload(img.Name, img.Data)
	if err != nil {
		return nil, err
	}
	img.ContentType = contentType
	return img, nil
}
