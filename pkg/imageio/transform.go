package imageio

import "sheetstamp/internal/models"

// FlipHorizontal returns the left-right mirror image of f. The negative
// form is written mirrored because the punch works from the opposite face
// of the sheet.
func FlipHorizontal(f *models.HeightField) *models.HeightField {
	out := models.NewHeightField(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		src, dst := f.Row(y), out.Row(y)
		for x := range src {
			dst[f.Width-1-x] = src[x]
		}
	}
	return out
}

// Invert returns f with every sample replaced by MaxSample minus the sample.
func Invert(f *models.HeightField) *models.HeightField {
	out := models.NewHeightField(f.Width, f.Height)
	for i, v := range f.Pix {
		out.Pix[i] = models.MaxSample - v
	}
	return out
}

// Binarize maps samples below threshold to the mark value and everything
// else to MaxSample. A zero threshold returns an unchanged copy, leaving
// exact zeros as the only marks.
func Binarize(f *models.HeightField, threshold uint16) *models.HeightField {
	out := f.Clone()
	if threshold == 0 {
		return out
	}
	for i, v := range out.Pix {
		if v < threshold {
			out.Pix[i] = models.Mark
		} else {
			out.Pix[i] = models.MaxSample
		}
	}
	return out
}
