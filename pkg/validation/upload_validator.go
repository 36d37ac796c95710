package validation

import (
	"fmt"
	"strings"

	apperrors "go-id-inspector/internal/errors"

	"github.com/gabriel-vasile/mimetype"
)

// UploadValidator checks submitted document bytes before detection
type UploadValidator struct {
	maxBytes     int64
	allowedTypes []string
}

// NewUploadValidator accepts JPEG and PNG uploads up to maxBytes
func NewUploadValidator(maxBytes int64) *UploadValidator {
	return &UploadValidator{
		maxBytes:     maxBytes,
		allowedTypes: []string{"image/jpeg", "image/png"},
	}
}

// ValidateUpload sniffs the content and returns its MIME type. PDFs are
// refused outright because rasterization happens upstream of detection.
func (v *UploadValidator) ValidateUpload(fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.NewValidationError("Uploaded file is empty", nil)
	}
	if v.maxBytes > 0 && int64(len(data)) > v.maxBytes {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("Uploaded file exceeds %d bytes", v.maxBytes), nil)
	}

	mtype := mimetype.Detect(data)
	if mtype.Is("application/pdf") {
		return "", apperrors.NewUnsupportedMediaError("PDF documents must be converted to an image before detection", nil).
			WithDetails(fileName)
	}

	for _, allowed := range v.allowedTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}
	return "", apperrors.NewUnsupportedMediaError(
		fmt.Sprintf("Unsupported file type %s, expected %s", mtype.String(), strings.Join(v.allowedTypes, " or ")), nil).
		WithDetails(fileName)
}
