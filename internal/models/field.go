package models

import (
	"fmt"
	"image"
	"image/color"
)

// MaxSample is the largest value a 16-bit sample can hold.
const MaxSample = 65535

// Mark is the sample value that denotes a punch-through location in the input.
const Mark = 0

// Point is an integer pixel coordinate. X grows to the right, Y grows down.
type Point struct {
	X, Y int
}

// Add returns the point translated by the offset o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// HeightField represents a width x height grid of 16-bit samples.
// It is used for the input bitmap as well as the negative and positive forms.
type HeightField struct {
	// Pix holds the samples in row-major order
	Pix []uint16

	// Width is the number of columns
	Width int

	// Height is the number of rows
	Height int
}

// NewHeightField allocates a zero-filled field
func NewHeightField(width, height int) *HeightField {
	return &HeightField{
		Pix:    make([]uint16, width*height),
		Width:  width,
		Height: height,
	}
}

// In reports whether p lies inside the field.
func (f *HeightField) In(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < f.Width && p.Y < f.Height
}

// At returns the sample at p. p must lie inside the field.
func (f *HeightField) At(p Point) uint16 {
	return f.Pix[p.Y*f.Width+p.X]
}

// Set stores v at p. p must lie inside the field.
func (f *HeightField) Set(p Point, v uint16) {
	f.Pix[p.Y*f.Width+p.X] = v
}

// Row returns the samples of row y, sharing memory with the field.
func (f *HeightField) Row(y int) []uint16 {
	return f.Pix[y*f.Width : (y+1)*f.Width]
}

// Clone returns a deep copy of the field.
func (f *HeightField) Clone() *HeightField {
	c := NewHeightField(f.Width, f.Height)
	copy(c.Pix, f.Pix)
	return c
}

// Equal reports whether both fields have the same size and samples.
func (f *HeightField) Equal(o *HeightField) bool {
	if f.Width != o.Width || f.Height != o.Height {
		return false
	}
	for i, v := range f.Pix {
		if o.Pix[i] != v {
			return false
		}
	}
	return true
}

// Gray16 converts the field into an image that shares no memory with it.
func (f *HeightField) Gray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: f.Pix[y*f.Width+x]})
		}
	}
	return img
}

// FromGray16 copies a grayscale image into a new field. The image origin is
// moved to (0,0).
func FromGray16(img *image.Gray16) *HeightField {
	b := img.Bounds()
	f := NewHeightField(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.Pix[y*f.Width+x] = img.Gray16At(b.Min.X+x, b.Min.Y+y).Y
		}
	}
	return f
}
