package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobStorage reads document images from Azure Blob Storage
type BlobStorage interface {
	ImageFetcher
	GetBlob(ctx context.Context, container, blob string) (*Image, error)
}

type azureStorage struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureStorage creates a blob source using shared key credentials
func NewAzureStorage(accountName string, accountKey string, maxBytes int64) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &azureStorage{client: client, maxBytes: maxBytes}, nil
}

// FetchImage takes a "container/blob" reference
func (s *azureStorage) FetchImage(ctx context.Context, ref string) (*Image, error) {
	container, blob, err := ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}
	return s.GetBlob(ctx, container, blob)
}

func (s *azureStorage) GetBlob(ctx context.Context, container, blob string) (*Image, error) {
	resp, err := s.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	body := resp.Body
	defer body.Close()

	data, err := readLimited(body, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s/%s: %w", container, blob, err)
	}
	return newImage(path.Base(blob), data), nil
}

// ParseBlobRef splits "container/path/to/blob" at the first slash
func ParseBlobRef(ref string) (container, blob string, err error) {
	ref = strings.TrimPrefix(ref, "/")
	container, blob, ok := strings.Cut(ref, "/")
	if !ok || container == "" || blob == "" {
		return "", "", fmt.Errorf("invalid blob reference %q, expected container/blob", ref)
	}
	return container, blob, nil
}
