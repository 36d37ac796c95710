package analyzer

import (
	"bytes"
	"context"
	"strings"

	"go-id-inspector/pkg/models"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// metadataAnalyzer reads embedded EXIF metadata from the original bytes
type metadataAnalyzer struct{}

// NewMetadataAnalyzer creates the EXIF metadata analyzer
func NewMetadataAnalyzer() Analyzer {
	return &metadataAnalyzer{}
}

func (a *metadataAnalyzer) Name() string { return models.CheckExifMetadata }

// Analyze never fails: an image without a readable EXIF block simply has
// no metadata, which is common for scanned government documents.
func (a *metadataAnalyzer) Analyze(_ context.Context, doc *Document) (models.CheckRecord, error) {
	record := models.NoExifMetadata()

	x, err := exif.Decode(bytes.NewReader(doc.Data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return record, nil
	}

	counter := &tagCounter{}
	// Walk stops at the first walker error only; a partial count is still useful
	_ = x.Walk(counter)
	if counter.count == 0 {
		return record, nil
	}

	record.Exists = true
	record.Count = counter.count
	if v, ok := tagString(x, exif.Software); ok {
		record.SoftwareUsed = v
	}
	if v, ok := tagString(x, exif.DateTimeOriginal); ok {
		record.CreationDate = v
	}
	return record, nil
}

func (a *metadataAnalyzer) Fallback(err error) models.CheckRecord {
	record := models.NoExifMetadata()
	record.Error = err.Error()
	return record
}

type tagCounter struct {
	count int
}

func (c *tagCounter) Walk(_ exif.FieldName, _ *tiff.Tag) error {
	c.count++
	return nil
}

func tagString(x *exif.Exif, field exif.FieldName) (string, bool) {
	tag, err := x.Get(field)
	if err != nil || tag == nil {
		return "", false
	}
	if v, err := tag.StringVal(); err == nil {
		return strings.TrimRight(v, "\x00 "), true
	}
	return strings.Trim(tag.String(), `"`), true
}
