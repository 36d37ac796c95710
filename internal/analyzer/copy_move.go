package analyzer

import (
	"context"

	"go-id-inspector/pkg/models"

	"gocv.io/x/gocv"
)

// copyMoveDetector flags documents with an unusually dense keypoint field.
// It counts keypoints only and never matches regions against each other,
// so has_copy_move is a density heuristic rather than a region match.
type copyMoveDetector struct {
	detector  KeypointDetector
	threshold int
}

// NewCopyMoveDetector creates the copy-move analyzer on top of a keypoint detector
func NewCopyMoveDetector(detector KeypointDetector, opts AnalysisOptions) Analyzer {
	return &copyMoveDetector{
		detector:  detector,
		threshold: opts.CopyMoveKeypointThreshold,
	}
}

func (d *copyMoveDetector) Name() string { return models.CheckCopyMove }

func (d *copyMoveDetector) Analyze(_ context.Context, doc *Document) (models.CheckRecord, error) {
	count, err := d.detector.CountKeypoints(doc.Gray())
	if err != nil {
		return nil, err
	}
	return models.CopyMoveDetection{
		Keypoints:   count,
		HasCopyMove: count > d.threshold,
	}, nil
}

func (d *copyMoveDetector) Fallback(err error) models.CheckRecord {
	return models.CopyMoveDetection{Error: err.Error()}
}

// siftDetector is the OpenCV SIFT keypoint detector
type siftDetector struct{}

// NewSIFTDetector creates a SIFT-backed keypoint detector
func NewSIFTDetector() KeypointDetector {
	return &siftDetector{}
}

// CountKeypoints builds a fresh SIFT instance per call since OpenCV
// feature detectors are not safe for concurrent use.
func (s *siftDetector) CountKeypoints(gray gocv.Mat) (int, error) {
	if gray.Empty() {
		return 0, ErrEmptyImage
	}
	sift := gocv.NewSIFT()
	defer sift.Close()

	keypoints := sift.Detect(gray)
	return len(keypoints), nil
}
