package analyzer

// NewSuite returns the full set of forensic analyzers in report order
func NewSuite(opts AnalysisOptions, ocr TextRecognizer, keypoints KeypointDetector) []Analyzer {
	if ocr == nil {
		ocr = NewTesseractRecognizer(opts.OCRLanguage)
	}
	if keypoints == nil {
		keypoints = NewSIFTDetector()
	}
	return []Analyzer{
		NewMetadataAnalyzer(),
		NewELAAnalyzer(opts),
		NewCopyMoveDetector(keypoints, opts),
		NewTextChecker(ocr, opts),
		NewNoiseAnalyzer(opts),
		NewCompressionAnalyzer(),
		NewEdgeAnalyzer(opts),
	}
}
