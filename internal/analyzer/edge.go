package analyzer

import (
	"context"

	"go-id-inspector/pkg/models"

	"gocv.io/x/gocv"
)

// edgeAnalyzer counts Canny edge pixels. Too few edges suggests the
// document was smoothed or regenerated.
type edgeAnalyzer struct {
	low       float32
	high      float32
	minPixels int
}

// NewEdgeAnalyzer creates the edge density analyzer
func NewEdgeAnalyzer(opts AnalysisOptions) Analyzer {
	return &edgeAnalyzer{
		low:       opts.CannyLowThreshold,
		high:      opts.CannyHighThreshold,
		minPixels: opts.MinEdgePixels,
	}
}

func (a *edgeAnalyzer) Name() string { return models.CheckEdgeAnalysis }

func (a *edgeAnalyzer) Analyze(_ context.Context, doc *Document) (models.CheckRecord, error) {
	gray := doc.Gray()
	if gray.Empty() {
		return nil, ErrEmptyImage
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, a.low, a.high)

	// Canny marks edges as 255; the sum over the map divided by 255 is the pixel count
	count := int(edges.Sum().Val1 / 255)
	return models.EdgeAnalysis{
		EdgePixelCount:    count,
		InconsistentEdges: count < a.minPixels,
	}, nil
}

func (a *edgeAnalyzer) Fallback(err error) models.CheckRecord {
	return models.EdgeAnalysis{Error: err.Error()}
}
