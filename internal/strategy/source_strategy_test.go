package strategy

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"testing"

	apperrors "go-id-inspector/internal/errors"
	"go-id-inspector/internal/storage"
	"go-id-inspector/pkg/validation"
)

type stubFetcher struct {
	img  *storage.Image
	err  error
	refs []string
}

func (s *stubFetcher) FetchImage(_ context.Context, ref string) (*storage.Image, error) {
	s.refs = append(s.refs, ref)
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.img
	return &copied, nil
}

func pngImage(t *testing.T) *storage.Image {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return &storage.Image{Name: "card.png", Data: buf.Bytes()}
}

func TestURLSourceStrategy(t *testing.T) {
	uploads := validation.NewUploadValidator(1 << 20)

	t.Run("valid url", func(t *testing.T) {
		fetcher := &stubFetcher{img: pngImage(t)}
		s := NewURLSourceStrategy(validation.NewURLValidator(), uploads, fetcher)
		img, err := s.Resolve(context.Background(), "https://example.com/card.png")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if img.ContentType != "image/png" {
			t.Errorf("Expected image/png, got %s", img.ContentType)
		}
		if s.GetStrategyName() != "url" {
			t.Errorf("Unexpected name %s", s.GetStrategyName())
		}
	})

	t.Run("disallowed host never fetched", func(t *testing.T) {
		fetcher := &stubFetcher{img: pngImage(t)}
		urls := validation.NewURLValidatorWithOptions([]string{"https"}, []string{"docs.example.com"})
		s := NewURLSourceStrategy(urls, uploads, fetcher)
		_, err := s.Resolve(context.Background(), "https://evil.example.net/card.png")
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
		if len(fetcher.refs) != 0 {
			t.Error("Expected no fetch for rejected URL")
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		fetcher := &stubFetcher{err: errors.New("connection refused")}
		s := NewURLSourceStrategy(validation.NewURLValidator(), uploads, fetcher)
		_, err := s.Resolve(context.Background(), "https://example.com/card.png")
		if apperrors.GetStatusCode(err) != http.StatusBadGateway {
			t.Errorf("Expected network error status, got %d (%v)", apperrors.GetStatusCode(err), err)
		}
	})

	t.Run("remote pdf refused", func(t *testing.T) {
		fetcher := &stubFetcher{img: &storage.Image{Name: "card.pdf", Data: []byte("%PDF-1.4\n%%EOF")}}
		s := NewURLSourceStrategy(validation.NewURLValidator(), uploads, fetcher)
		_, err := s.Resolve(context.Background(), "https://example.com/card.pdf")
		if apperrors.GetStatusCode(err) != http.StatusUnsupportedMediaType {
			t.Errorf("Expected 415, got %d", apperrors.GetStatusCode(err))
		}
	})
}

func TestBlobSourceStrategy(t *testing.T) {
	fetcher := &stubFetcher{img: pngImage(t)}
	s := NewBlobSourceStrategy(validation.NewUploadValidator(0), fetcher)

	if _, err := s.Resolve(context.Background(), "uploads/2024/card.png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(fetcher.refs) != 1 || fetcher.refs[0] != "uploads/2024/card.png" {
		t.Errorf("Unexpected fetch refs %v", fetcher.refs)
	}

	if _, err := s.Resolve(context.Background(), "no-slash"); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestLocalSourceStrategy(t *testing.T) {
	s := NewLocalSourceStrategy(validation.NewUploadValidator(0), &stubFetcher{img: pngImage(t)})
	if _, err := s.Resolve(context.Background(), ""); err == nil {
		t.Error("Expected error for empty path")
	}
	if _, err := s.Resolve(context.Background(), "card.png"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
