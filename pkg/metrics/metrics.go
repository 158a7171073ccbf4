// Package metrics summarizes the produced height fields in physical units.
package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sheetstamp/internal/models"
	"sheetstamp/pkg/forming"
)

// Summary describes the heights of one form in mm.
type Summary struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Report collects the statistics printed after a run.
type Report struct {
	// Width and Height are the dimensions shared by all rasters
	Width, Height int

	// MarkedFraction is the share of input pixels at the mark value
	MarkedFraction float64

	// Negative and Positive summarize the two forms
	Negative Summary
	Positive Summary

	// MaxLift is the largest height in mm by which the die surface lies
	// above the punch surface at the same pixel.
	MaxLift float64
}

// Heights converts every sample of f into mm.
func Heights(f *models.HeightField, punchOutDepthMM float64) []float64 {
	out := make([]float64, len(f.Pix))
	for i, v := range f.Pix {
		out[i] = forming.SampleToMM(v, punchOutDepthMM)
	}
	return out
}

// Summarize computes the summary of f. An empty field yields a zero Summary.
func Summarize(f *models.HeightField, punchOutDepthMM float64) Summary {
	h := Heights(f, punchOutDepthMM)
	if len(h) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(h, nil)
	if len(h) == 1 {
		std = 0
	}
	return Summary{
		Min:    floats.Min(h),
		Max:    floats.Max(h),
		Mean:   mean,
		StdDev: std,
	}
}

// Compute builds the full report. negative and positive must have the same
// dimensions as input.
func Compute(input, negative, positive *models.HeightField, punchOutDepthMM float64) Report {
	r := Report{
		Width:    input.Width,
		Height:   input.Height,
		Negative: Summarize(negative, punchOutDepthMM),
		Positive: Summarize(positive, punchOutDepthMM),
	}

	r.MarkedFraction = MarkedFraction(input)

	neg := Heights(negative, punchOutDepthMM)
	pos := Heights(positive, punchOutDepthMM)
	if len(neg) > 0 {
		diff := make([]float64, len(neg))
		floats.SubTo(diff, pos, neg)
		r.MaxLift = floats.Max(diff)
	}
	return r
}

// MarkedFraction returns the share of samples equal to the mark value.
func MarkedFraction(f *models.HeightField) float64 {
	if len(f.Pix) == 0 {
		return 0
	}
	n := 0
	for _, v := range f.Pix {
		if v == models.Mark {
			n++
		}
	}
	return float64(n) / float64(len(f.Pix))
}
