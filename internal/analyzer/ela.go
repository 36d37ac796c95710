package analyzer

import (
	"context"
	"fmt"
	"os"

	"go-id-inspector/pkg/models"

	"gocv.io/x/gocv"
)

// elaAnalyzer re-encodes the document as JPEG at a fixed quality and
// measures the mean absolute difference against the original raster
type elaAnalyzer struct {
	quality   int
	tempDir   string
	threshold float64
}

// NewELAAnalyzer creates the error-level analyzer
func NewELAAnalyzer(opts AnalysisOptions) Analyzer {
	return &elaAnalyzer{
		quality:   opts.ELAQuality,
		tempDir:   opts.ELATempDir,
		threshold: opts.ELATamperThreshold,
	}
}

func (a *elaAnalyzer) Name() string { return models.CheckErrorLevel }

func (a *elaAnalyzer) Analyze(_ context.Context, doc *Document) (models.CheckRecord, error) {
	recompressed, err := a.recompress(doc.Color())
	if err != nil {
		return nil, err
	}
	defer recompressed.Close()

	if recompressed.Rows() != doc.Color().Rows() || recompressed.Cols() != doc.Color().Cols() {
		return nil, fmt.Errorf("re-encoded raster is %dx%d, original is %dx%d",
			recompressed.Cols(), recompressed.Rows(), doc.Color().Cols(), doc.Color().Rows())
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(doc.Color(), recompressed, &diff)

	mean := channelMean(diff)
	return models.ErrorLevelAnalysis{
		TamperIndication: mean > a.threshold,
		DifferenceMean:   mean,
		Threshold:        a.threshold,
		Quality:          a.quality,
	}, nil
}

func (a *elaAnalyzer) Fallback(err error) models.CheckRecord {
	return models.ErrorLevelAnalysis{
		Threshold: a.threshold,
		Quality:   a.quality,
		Error:     err.Error(),
	}
}

// recompress round-trips the raster through a uniquely named side file.
// The file is removed on every return path.
func (a *elaAnalyzer) recompress(src gocv.Mat) (gocv.Mat, error) {
	tmp, err := os.CreateTemp(a.tempDir, "ela-*.jpg")
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create ELA side file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)
	if err := tmp.Close(); err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to close ELA side file: %w", err)
	}

	if ok := gocv.IMWriteWithParams(path, src, []int{gocv.IMWriteJpegQuality, a.quality}); !ok {
		return gocv.Mat{}, fmt.Errorf("failed to write JPEG at quality %d", a.quality)
	}

	recompressed := gocv.IMRead(path, gocv.IMReadColor)
	if recompressed.Empty() {
		recompressed.Close()
		return gocv.Mat{}, fmt.Errorf("failed to read back re-encoded image")
	}
	return recompressed, nil
}

// channelMean averages a matrix over every pixel and channel
func channelMean(m gocv.Mat) float64 {
	channels := m.Channels()
	if channels == 0 || m.Empty() {
		return 0
	}
	s := m.Mean()
	vals := [4]float64{s.Val1, s.Val2, s.Val3, s.Val4}
	var total float64
	for i := 0; i < channels && i < len(vals); i++ {
		total += vals[i]
	}
	return total / float64(channels)
}
