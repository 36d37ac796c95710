package analyzer

// AnalysisOptions configures the forensic analyzers. The thresholds here
// drive each analyzer's own flag; the penalty bounds applied on top of
// those flags live with the verdict policy.
type AnalysisOptions struct {
	// Error-level analysis
	ELAQuality         int
	ELATempDir         string
	ELATamperThreshold float64

	// Copy-move keypoint density
	CopyMoveKeypointThreshold int

	// OCR text consistency
	OCRLanguage    string
	MinLineLength  int
	OCRSampleLines int

	// Noise residual
	NoiseKernelSize      int
	NoiseStdDevThreshold float64

	// Edge density
	CannyLowThreshold  float32
	CannyHighThreshold float32
	MinEdgePixels      int

	// Performance options
	MaxWorkers int
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		ELAQuality:                90,
		ELATamperThreshold:        10,
		CopyMoveKeypointThreshold: 500,
		OCRLanguage:               "eng",
		MinLineLength:             3,
		OCRSampleLines:            5,
		NoiseKernelSize:           5,
		NoiseStdDevThreshold:      10,
		CannyLowThreshold:         100,
		CannyHighThreshold:        200,
		MinEdgePixels:             1000,
		MaxWorkers:                0, // Use default CPU count
	}
}

// WithELAQuality sets the lossy re-encode quality used by error-level analysis
func (opts AnalysisOptions) WithELAQuality(quality int) AnalysisOptions {
	if quality > 0 && quality <= 100 {
		opts.ELAQuality = quality
	}
	return opts
}

// WithTempDir sets where error-level analysis writes its side file
func (opts AnalysisOptions) WithTempDir(dir string) AnalysisOptions {
	opts.ELATempDir = dir
	return opts
}

// WithOCRLanguage sets the tesseract language pack
func (opts AnalysisOptions) WithOCRLanguage(lang string) AnalysisOptions {
	if lang != "" {
		opts.OCRLanguage = lang
	}
	return opts
}

// WithWorkers sets the analyzer worker count
func (opts AnalysisOptions) WithWorkers(n int) AnalysisOptions {
	opts.MaxWorkers = n
	return opts
}
