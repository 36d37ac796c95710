package analyzer

import (
	"context"
	"strings"
	"unicode/utf8"

	"go-id-inspector/pkg/models"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
	"github.com/otiai10/gosseract/v2"
)

// textChecker runs OCR and flags fragmented text. Any non-blank line
// shorter than the minimum length is treated as an overlay or splice mark.
type textChecker struct {
	recognizer    TextRecognizer
	minLineLength int
	sampleLines   int
}

// NewTextChecker creates the OCR text consistency checker
func NewTextChecker(recognizer TextRecognizer, opts AnalysisOptions) Analyzer {
	return &textChecker{
		recognizer:    recognizer,
		minLineLength: opts.MinLineLength,
		sampleLines:   opts.OCRSampleLines,
	}
}

func (c *textChecker) Name() string { return models.CheckTextAnalysis }

func (c *textChecker) Analyze(ctx context.Context, doc *Document) (models.CheckRecord, error) {
	text, err := c.recognizer.Recognize(ctx, doc.Data)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(text, "\n")
	sample := lines
	if len(sample) > c.sampleLines {
		sample = sample[:c.sampleLines]
	}

	record := models.TextAnalysis{
		OCRTextSample:   append([]string(nil), sample...),
		Inconsistencies: hasFragmentedLine(lines, c.minLineLength),
	}
	if expected := strings.TrimSpace(doc.ExpectedText); expected != "" {
		cer, wordRate := compareText(expected, text)
		record.ExpectedText = expected
		record.CharacterErrorRate = &cer
		record.WordErrorRate = &wordRate
	}
	return record, nil
}

func (c *textChecker) Fallback(err error) models.CheckRecord {
	return models.TextAnalysis{
		OCRTextSample: []string{},
		Error:         err.Error(),
	}
}

func hasFragmentedLine(lines []string, minLength int) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if utf8.RuneCountInString(trimmed) < minLength {
			return true
		}
	}
	return false
}

// compareText scores the OCR output against the text the caller expects
// on the document. Both rates are normalized by the expected length.
func compareText(expected, actual string) (cer float64, wordRate float64) {
	expectedNorm := strings.Join(strings.Fields(expected), " ")
	actualNorm := strings.Join(strings.Fields(actual), " ")

	if n := utf8.RuneCountInString(expectedNorm); n > 0 {
		cer = float64(levenshtein.Distance(expectedNorm, actualNorm)) / float64(n)
	}

	reference := strings.Fields(strings.ToLower(expected))
	candidate := strings.Fields(strings.ToLower(actual))
	if len(reference) > 0 {
		wordRate, _ = wer.WER(reference, candidate)
	}
	return cer, wordRate
}

// tesseractRecognizer is the gosseract-backed OCR engine
type tesseractRecognizer struct {
	language string
}

// NewTesseractRecognizer creates an OCR engine for the given language pack
func NewTesseractRecognizer(language string) TextRecognizer {
	return &tesseractRecognizer{language: language}
}

// Recognize opens a dedicated client per call; gosseract clients wrap a
// single tesseract handle and must not be shared across goroutines.
func (r *tesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.language != "" {
		if err := client.SetLanguage(r.language); err != nil {
			return "", err
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return client.Text()
}
