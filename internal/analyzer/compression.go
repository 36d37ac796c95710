package analyzer

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	"go-id-inspector/pkg/models"

	"github.com/gabriel-vasile/mimetype"
)

// compressionAnalyzer reports the container format. It is diagnostic
// only and never moves the confidence score.
type compressionAnalyzer struct{}

// NewCompressionAnalyzer creates the compression format analyzer
func NewCompressionAnalyzer() Analyzer {
	return &compressionAnalyzer{}
}

func (a *compressionAnalyzer) Name() string { return models.CheckCompression }

// Analyze guesses the format from the file name first and falls back to
// sniffing the content when the extension is missing or unknown.
func (a *compressionAnalyzer) Analyze(_ context.Context, doc *Document) (models.CheckRecord, error) {
	format := formatFromName(doc.FileName)
	if format == "" && len(doc.Data) > 0 {
		format = mimetype.Detect(doc.Data).String()
	}
	if i := strings.Index(format, ";"); i >= 0 {
		format = strings.TrimSpace(format[:i])
	}
	if format == "" {
		format = "unknown"
	}
	return models.CompressionAnalysis{
		Format:              format,
		MultipleCompression: strings.Contains(format, "jpeg"),
	}, nil
}

func (a *compressionAnalyzer) Fallback(err error) models.CheckRecord {
	return models.CompressionAnalysis{
		Format: "unknown",
		Error:  err.Error(),
	}
}

func formatFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}
