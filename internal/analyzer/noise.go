package analyzer

import (
	"context"
	"image"

	"go-id-inspector/pkg/models"

	"gocv.io/x/gocv"
)

// noiseAnalyzer measures the spread of the high-frequency residual left
// after subtracting a blurred copy of the grayscale raster
type noiseAnalyzer struct {
	kernel    int
	threshold float64
}

// NewNoiseAnalyzer creates the noise residual analyzer
func NewNoiseAnalyzer(opts AnalysisOptions) Analyzer {
	kernel := opts.NoiseKernelSize
	if kernel <= 0 || kernel%2 == 0 {
		kernel = 5
	}
	return &noiseAnalyzer{
		kernel:    kernel,
		threshold: opts.NoiseStdDevThreshold,
	}
}

func (a *noiseAnalyzer) Name() string { return models.CheckNoiseAnalysis }

func (a *noiseAnalyzer) Analyze(_ context.Context, doc *Document) (models.CheckRecord, error) {
	gray := doc.Gray()
	if gray.Empty() {
		return nil, ErrEmptyImage
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(a.kernel, a.kernel), 0, 0, gocv.BorderDefault)

	residual := gocv.NewMat()
	defer residual.Close()
	gocv.AbsDiff(gray, blurred, &residual)

	mean := gocv.NewMat()
	defer mean.Close()
	stdDev := gocv.NewMat()
	defer stdDev.Close()
	gocv.MeanStdDev(residual, &mean, &stdDev)

	std := stdDev.GetDoubleAt(0, 0)
	return models.NoiseAnalysis{
		StdDev:            std,
		InconsistentNoise: std > a.threshold,
	}, nil
}

func (a *noiseAnalyzer) Fallback(err error) models.CheckRecord {
	return models.NoiseAnalysis{Error: err.Error()}
}
