package imageio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sheetstamp/internal/models"
)

func TestFlipHorizontal(t *testing.T) {
	f := createTestField(5, 3)
	flipped := FlipHorizontal(f)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			assert.Equal(t, f.At(models.Point{X: x, Y: y}), flipped.At(models.Point{X: f.Width - 1 - x, Y: y}))
		}
	}
	assert.True(t, f.Equal(FlipHorizontal(flipped)), "flipping twice restores the field")
}

func TestInvert(t *testing.T) {
	f := &models.HeightField{Pix: []uint16{0, 1, models.MaxSample}, Width: 3, Height: 1}
	assert.Equal(t, []uint16{models.MaxSample, models.MaxSample - 1, 0}, Invert(f).Pix)
	assert.Equal(t, []uint16{0, 1, models.MaxSample}, f.Pix, "input is not modified")
}

func TestBinarize(t *testing.T) {
	f := &models.HeightField{Pix: []uint16{0, 100, 32767, 32768, models.MaxSample}, Width: 5, Height: 1}

	assert.Equal(t, f.Pix, Binarize(f, 0).Pix)
	assert.Equal(t,
		[]uint16{0, 0, 0, models.MaxSample, models.MaxSample},
		Binarize(f, 32768).Pix)
}
