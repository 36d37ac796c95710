package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"sync"

	"go-id-inspector/pkg/models"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when no image bytes were supplied
var ErrEmptyImage = errors.New("empty image data")

// Document is a decoded identity-document image owned by a single
// detection run. It keeps the original bytes for byte-level checks
// alongside the BGR and grayscale rasters shared read-only by analyzers.
type Document struct {
	FileName     string
	Data         []byte
	ExpectedText string
	Properties   models.ImageProperties

	color     gocv.Mat
	gray      gocv.Mat
	closeOnce sync.Once
}

// Decode probes and decodes raw image bytes. Any failure here is fatal
// for the detection run.
func Decode(fileName string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot identify image file %q: %w", fileName, err)
	}

	colorMat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode raster %q: %w", fileName, err)
	}
	if colorMat.Empty() {
		colorMat.Close()
		return nil, fmt.Errorf("failed to decode raster %q", fileName)
	}

	gray := gocv.NewMat()
	gocv.CvtColor(colorMat, &gray, gocv.ColorBGRToGray)
	if gray.Empty() {
		colorMat.Close()
		gray.Close()
		return nil, fmt.Errorf("failed to convert %q to grayscale", fileName)
	}

	return &Document{
		FileName: fileName,
		Data:     data,
		Properties: models.ImageProperties{
			Width:  cfg.Width,
			Height: cfg.Height,
			Format: strings.ToUpper(format),
			Mode:   imageMode(format, cfg.ColorModel, data),
		},
		color: colorMat,
		gray:  gray,
	}, nil
}

// Color returns the 3-channel BGR raster
func (d *Document) Color() gocv.Mat {
	return d.color
}

// Gray returns the single-channel raster
func (d *Document) Gray() gocv.Mat {
	return d.gray
}

// Close releases the native rasters. Safe to call more than once.
func (d *Document) Close() error {
	d.closeOnce.Do(func() {
		d.color.Close()
		d.gray.Close()
	})
	return nil
}

// pngSignature is the fixed 8-byte PNG file header
var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// imageMode prefers the PNG header's color type since the Go decoder
// reports opaque truecolor PNGs with an alpha-carrying color model
func imageMode(format string, m color.Model, data []byte) string {
	if format == "png" {
		if mode, ok := pngColorMode(data); ok {
			return mode
		}
	}
	return colorMode(m)
}

// pngColorMode reads the color type from the IHDR chunk, which always
// directly follows the signature
func pngColorMode(data []byte) (string, bool) {
	if len(data) < 26 || !bytes.HasPrefix(data, pngSignature) || string(data[12:16]) != "IHDR" {
		return "", false
	}
	bitDepth, colorType := data[24], data[25]
	switch colorType {
	case 0:
		if bitDepth == 16 {
			return "I;16", true
		}
		return "L", true
	case 2:
		return "RGB", true
	case 3:
		return "P", true
	case 4:
		return "LA", true
	case 6:
		return "RGBA", true
	default:
		return "", false
	}
}

// colorMode names the color model the way imaging tools usually report it
func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.YCbCrModel, color.NYCbCrAModel:
		return "RGB"
	case color.CMYKModel:
		return "CMYK"
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return "RGBA"
	default:
		return "unknown"
	}
}
