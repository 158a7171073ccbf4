// Package forming computes the negative (punch) and positive (die) height
// fields of a sheet-metal stamping tool from a marked input bitmap.
//
// All geometry is done in millimeters. Pixel radii are derived from
// PixelsPerMM only to bound the spatial searches.
package forming

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned when a physical parameter is not a
// positive finite number.
var ErrInvalidParameter = errors.New("invalid forming parameter")

// Params holds the physical description of the stamping tool.
type Params struct {
	// PunchOutDepth is how far the sheet is pushed through at a mark, in mm.
	// It is also the full scale of both output height fields.
	PunchOutDepth float64

	// SheetThickness is the thickness of the stamped material in mm.
	SheetThickness float64

	// FadeDistance is the distance in mm over which the negative form rises
	// from full depression back to the rest plane.
	FadeDistance float64

	// PixelsPerMM is the resolution of every raster involved.
	PixelsPerMM float64
}

// DefaultParams returns the parameters of a 0.7 mm sheet punched 2 mm deep
// at 10 pixels per millimeter.
func DefaultParams() Params {
	return Params{
		PunchOutDepth:  2.0,
		SheetThickness: 0.7,
		FadeDistance:   4.5,
		PixelsPerMM:    10.0,
	}
}

// Validate checks that every parameter is positive and finite.
func (p Params) Validate() error {
	return errors.Join(
		checkPositive("punch out depth", p.PunchOutDepth),
		checkPositive("sheet thickness", p.SheetThickness),
		checkPositive("fade distance", p.FadeDistance),
		checkPositive("pixels per mm", p.PixelsPerMM),
	)
}

// FadeRadius is the search radius of the distance field stage in pixels.
func (p Params) FadeRadius() float64 {
	return p.FadeDistance * p.PixelsPerMM
}

// SheetRadius is the scan radius of the offset synthesis stage in pixels.
func (p Params) SheetRadius() float64 {
	return p.SheetThickness * p.PixelsPerMM
}

func checkPositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}
