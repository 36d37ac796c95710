package models

// Check names used as keys of DetectionReport.Checks
const (
	CheckImageProperties   = "image_properties"
	CheckExifMetadata      = "exif_metadata"
	CheckErrorLevel        = "error_level_analysis"
	CheckCopyMove          = "copy_move_detection"
	CheckTextAnalysis      = "text_analysis"
	CheckNoiseAnalysis     = "noise_analysis"
	CheckCompression       = "compression_analysis"
	CheckEdgeAnalysis      = "edge_analysis"
	CheckMLClassification  = "ml_classification"
	InternalErrorReason    = "Internal error during detection"
	MissingMetadataReason  = "Missing EXIF metadata (may be expected for government PDFs)"
	ModelOverrideReason    = "ML model classified as tampered"
	metadataMissingDefault = "None"
)

// CheckRecord is the diagnostic record produced by a single check.
// Every record carries its own check name and an optional degradation message.
type CheckRecord interface {
	CheckName() string
	Degradation() string
}

// DetectionReport is the aggregate verdict for one submitted document image
type DetectionReport struct {
	IsAuthentic bool                   `json:"is_authentic"`
	Confidence  float64                `json:"confidence"`
	Checks      map[string]CheckRecord `json:"checks,omitempty"`
	Reasons     []string               `json:"reasons"`
	Error       string                 `json:"error,omitempty"`
}

// FailedReport builds the report returned when detection cannot complete
func FailedReport(err error) *DetectionReport {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &DetectionReport{
		IsAuthentic: false,
		Confidence:  0,
		Reasons:     []string{InternalErrorReason},
		Error:       msg,
	}
}

// Status maps the verdict onto the labels shown to end users
func (r *DetectionReport) Status() string {
	if r.IsAuthentic {
		return "Original"
	}
	return "Tampered"
}

// ImageProperties describes the decoded raster
type ImageProperties struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Mode   string `json:"mode"`
}

func (ImageProperties) CheckName() string { return CheckImageProperties }
func (ImageProperties) Degradation() string { return "" }

// ExifMetadata holds embedded descriptive metadata
type ExifMetadata struct {
	Exists       bool   `json:"exists"`
	Count        int    `json:"count"`
	SoftwareUsed string `json:"software_used"`
	CreationDate string `json:"creation_date"`
	Error        string `json:"error,omitempty"`
}

// NoExifMetadata is the record for an image without readable metadata
func NoExifMetadata() ExifMetadata {
	return ExifMetadata{
		SoftwareUsed: metadataMissingDefault,
		CreationDate: metadataMissingDefault,
	}
}

func (ExifMetadata) CheckName() string { return CheckExifMetadata }
func (m ExifMetadata) Degradation() string { return m.Error }

// ErrorLevelAnalysis holds the re-encode difference evidence
type ErrorLevelAnalysis struct {
	TamperIndication bool    `json:"tamper_indication"`
	DifferenceMean   float64 `json:"difference_mean"`
	Threshold        float64 `json:"threshold"`
	Quality          int     `json:"quality"`
	Error            string  `json:"error,omitempty"`
}

func (ErrorLevelAnalysis) CheckName() string { return CheckErrorLevel }
func (e ErrorLevelAnalysis) Degradation() string { return e.Error }

// CopyMoveDetection holds the keypoint density evidence
type CopyMoveDetection struct {
	Keypoints   int    `json:"keypoints"`
	HasCopyMove bool   `json:"has_copy_move"`
	Error       string `json:"error,omitempty"`
}

func (CopyMoveDetection) CheckName() string { return CheckCopyMove }
func (c CopyMoveDetection) Degradation() string { return c.Error }

// TextAnalysis holds OCR evidence. The comparison fields are only set
// when the caller supplied the text it expects on the document.
type TextAnalysis struct {
	OCRTextSample      []string `json:"ocr_text_sample"`
	Inconsistencies    bool     `json:"inconsistencies"`
	ExpectedText       string   `json:"expected_text,omitempty"`
	CharacterErrorRate *float64 `json:"character_error_rate,omitempty"`
	WordErrorRate      *float64 `json:"word_error_rate,omitempty"`
	Error              string   `json:"error,omitempty"`
}

func (TextAnalysis) CheckName() string { return CheckTextAnalysis }
func (t TextAnalysis) Degradation() string { return t.Error }

// NoiseAnalysis holds the high-frequency residual evidence
type NoiseAnalysis struct {
	StdDev            float64 `json:"std_dev"`
	InconsistentNoise bool    `json:"inconsistent_noise"`
	Error             string  `json:"error,omitempty"`
}

func (NoiseAnalysis) CheckName() string { return CheckNoiseAnalysis }
func (n NoiseAnalysis) Degradation() string { return n.Error }

// CompressionAnalysis is diagnostic only
type CompressionAnalysis struct {
	Format              string `json:"format"`
	MultipleCompression bool   `json:"multiple_compression"`
	Error               string `json:"error,omitempty"`
}

func (CompressionAnalysis) CheckName() string { return CheckCompression }
func (c CompressionAnalysis) Degradation() string { return c.Error }

// EdgeAnalysis holds the edge density evidence
type EdgeAnalysis struct {
	EdgePixelCount    int    `json:"edge_pixel_count"`
	InconsistentEdges bool   `json:"inconsistent_edges"`
	Error             string `json:"error,omitempty"`
}

func (EdgeAnalysis) CheckName() string { return CheckEdgeAnalysis }
func (e EdgeAnalysis) Degradation() string { return e.Error }

// MLClassification records the classifier decision, confidence in percent
type MLClassification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (MLClassification) CheckName() string { return CheckMLClassification }
func (MLClassification) Degradation() string { return "" }
