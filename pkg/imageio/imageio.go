// Package imageio moves height fields between files and memory: decoding
// input bitmaps, encoding 16-bit output forms and deriving output names.
package imageio

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"sheetstamp/internal/models"
)

// Format is an output file format.
type Format string

const (
	PNG  Format = "png"
	TIFF Format = "tiff"
)

// ParseFormat accepts "png", "tif" and "tiff" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("unsupported output format %q (must be png or tiff)", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == TIFF {
		return ".tif"
	}
	return ".png"
}

// Load decodes a PNG, JPEG, TIFF or BMP file into a 16-bit height field.
func Load(path string) (*models.HeightField, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if format == "" {
		return nil, fmt.Errorf("unknown image format in %s", path)
	}
	return ToHeightField(img), nil
}

// ToHeightField converts any image to 16-bit luminance.
func ToHeightField(img image.Image) *models.HeightField {
	if g, ok := img.(*image.Gray16); ok {
		return models.FromGray16(g)
	}
	b := img.Bounds()
	gray := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return models.FromGray16(gray)
}

// Save writes f as a 16-bit grayscale image, creating parent directories
// as needed.
func Save(path string, f *models.HeightField, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	img := f.Gray16()
	switch format {
	case TIFF:
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(file, img)
	default:
		err = fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return file.Close()
}

// Paths holds the files written for one input.
type Paths struct {
	Negative string
	Positive string
	Profile  string
}

// OutputPaths derives <dir>/<base>-negative.<ext> and friends from the input
// path. An empty outputDir means the input's directory.
func OutputPaths(inputPath, outputDir string, format Format) Paths {
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return Paths{
		Negative: filepath.Join(outputDir, base+"-negative"+format.Ext()),
		Positive: filepath.Join(outputDir, base+"-positive"+format.Ext()),
		Profile:  filepath.Join(outputDir, base+"-profile.png"),
	}
}
