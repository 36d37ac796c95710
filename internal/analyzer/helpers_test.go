package analyzer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"go-id-inspector/pkg/models"

	"gocv.io/x/gocv"
)

// createUniformImage creates a flat grayscale test image
func createUniformImage(width, height int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	return img
}

// createStripedImage creates alternating black and white vertical stripes
func createStripedImage(width, height, stripe int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/stripe)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// exifJPEG encodes img as a JPEG carrying an APP1 EXIF block with a
// Software tag in IFD0 and DateTimeOriginal in the Exif sub-IFD
func exifJPEG(t *testing.T, img image.Image, software, taken string) []byte {
	t.Helper()
	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}

	softwareVal := append([]byte(software), 0)
	takenVal := append([]byte(taken), 0)

	const (
		ifd0Offset   = 8
		ifd0Size     = 2 + 2*12 + 4
		exifIFDStart = ifd0Offset + ifd0Size
		exifIFDSize  = 2 + 12 + 4
		dataStart    = exifIFDStart + exifIFDSize
	)
	softwareOffset := uint32(dataStart)
	takenOffset := softwareOffset + uint32(len(softwareVal))

	le := binary.LittleEndian
	var tiff bytes.Buffer
	tiff.WriteString("II")
	binary.Write(&tiff, le, uint16(42))
	binary.Write(&tiff, le, uint32(ifd0Offset))

	entry := func(tag, typ uint16, count, value uint32) {
		binary.Write(&tiff, le, tag)
		binary.Write(&tiff, le, typ)
		binary.Write(&tiff, le, count)
		binary.Write(&tiff, le, value)
	}

	// IFD0: Software, ExifIFDPointer
	binary.Write(&tiff, le, uint16(2))
	entry(0x0131, 2, uint32(len(softwareVal)), softwareOffset)
	entry(0x8769, 4, 1, exifIFDStart)
	binary.Write(&tiff, le, uint32(0))

	// Exif sub-IFD: DateTimeOriginal
	binary.Write(&tiff, le, uint16(1))
	entry(0x9003, 2, uint32(len(takenVal)), takenOffset)
	binary.Write(&tiff, le, uint32(0))

	tiff.Write(softwareVal)
	tiff.Write(takenVal)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	raw := encoded.Bytes()
	var out bytes.Buffer
	out.Write(raw[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(raw[2:])
	return out.Bytes()
}

func decodeTestDocument(t *testing.T, name string, img image.Image) *Document {
	t.Helper()
	doc, err := Decode(name, encodePNG(t, img))
	if err != nil {
		t.Fatalf("Failed to decode test document: %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

type fakeKeypoints struct {
	count int
	err   error
}

func (f *fakeKeypoints) CountKeypoints(_ gocv.Mat) (int, error) {
	return f.count, f.err
}

// panicAnalyzer blows up inside Analyze
type panicAnalyzer struct{}

func (panicAnalyzer) Name() string { return models.CheckNoiseAnalysis }
func (panicAnalyzer) Analyze(context.Context, *Document) (models.CheckRecord, error) {
	panic("boom")
}
func (panicAnalyzer) Fallback(err error) models.CheckRecord {
	return models.NoiseAnalysis{Error: err.Error()}
}

// nilAnalyzer returns neither a record nor an error
type nilAnalyzer struct{}

func (nilAnalyzer) Name() string { return models.CheckEdgeAnalysis }
func (nilAnalyzer) Analyze(context.Context, *Document) (models.CheckRecord, error) {
	return nil, nil
}
func (nilAnalyzer) Fallback(err error) models.CheckRecord {
	return models.EdgeAnalysis{Error: err.Error()}
}

var errFake = errors.New("engine unavailable")
