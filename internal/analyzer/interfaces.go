package analyzer

import (
	"context"

	"go-id-inspector/pkg/models"

	"gocv.io/x/gocv"
)

// Analyzer is one independent forensic check over a decoded document.
// Analyze reports internal failures as errors; Fallback supplies the
// conservative "no issue found" record used in their place.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, doc *Document) (models.CheckRecord, error)
	Fallback(err error) models.CheckRecord
}

// KeypointDetector counts scale/rotation-invariant local keypoints
type KeypointDetector interface {
	CountKeypoints(gray gocv.Mat) (int, error)
}

// TextRecognizer extracts text from encoded image bytes
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
