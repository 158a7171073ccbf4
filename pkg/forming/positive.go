package forming

import (
	"errors"
	"fmt"
	"math"

	"sheetstamp/internal/models"
	"sheetstamp/pkg/neighbors"
)

// relativeTolerance bounds the rounding of (neg + t) - t relative to the
// magnitudes involved. Anything further outside the valid range is reported
// as an InvariantError.
const relativeTolerance = 1e-12

// heightTolerance returns the absolute slack in mm allowed around
// [0, depth] for the given tool dimensions.
func heightTolerance(depth, thickness float64) float64 {
	return relativeTolerance * max(1, depth+thickness)
}

// InvariantError reports a positive form height outside [Min, Max]. It means
// the sheet thickness, punch depth and negative form do not describe a
// consistent tool; the value is never clamped into range.
type InvariantError struct {
	Point models.Point
	Z     float64
	Min   float64
	Max   float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("positive form height %.9f mm at %v outside [%g, %g] mm", e.Z, e.Point, e.Min, e.Max)
}

// ComputePositiveForm derives the die height field from a negative form.
//
// Every die point must sit at least sheetThicknessMM away from the punch
// surface. For each neighbor within that radius the sheet thickness is the
// hypotenuse of a right triangle whose horizontal leg is the neighbor
// distance; the vertical leg is the clearance needed above that neighbor.
// The die height is the largest such requirement minus the sheet thickness,
// mapped linearly from [0, punchOutDepthMM] onto [0, MaxSample].
//
// The die follows the negative form's scale: MaxSample is the rest plane and
// 0 is the deepest point of the die, directly under a mark. An all-white
// input therefore yields a positive form that is MaxSample everywhere.
func ComputePositiveForm(negative *models.HeightField, punchOutDepthMM, sheetThicknessMM, pixelsPerMM float64, opts *Options) (*models.HeightField, error) {
	if negative == nil {
		return nil, errors.New("nil negative form")
	}
	if err := errors.Join(
		checkPositive("punch out depth", punchOutDepthMM),
		checkPositive("sheet thickness", sheetThicknessMM),
		checkPositive("pixels per mm", pixelsPerMM),
	); err != nil {
		return nil, err
	}

	table := neighbors.Build(sheetThicknessMM * pixelsPerMM)
	out := models.NewHeightField(negative.Width, negative.Height)
	s := synthesizer{
		negative:  negative,
		table:     table,
		depth:     punchOutDepthMM,
		thickness: sheetThicknessMM,
		ppm:       pixelsPerMM,
	}

	tol := heightTolerance(punchOutDepthMM, sheetThicknessMM)
	err := runRows(negative.Height, StagePositive, opts, func(y int) error {
		row := out.Row(y)
		for x := range row {
			p := models.Point{X: x, Y: y}
			z := s.requiredHeight(p) - sheetThicknessMM
			if err := verifyHeight(p, z, punchOutDepthMM, tol); err != nil {
				return err
			}
			row[x] = heightToSample(z, punchOutDepthMM)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type synthesizer struct {
	negative  *models.HeightField
	table     *neighbors.Table
	depth     float64
	thickness float64
	ppm       float64
}

// requiredHeight returns the lowest height in mm at p that keeps the
// sheet's cross-section clear of the negative surface around p.
func (s *synthesizer) requiredHeight(p models.Point) float64 {
	t2 := s.thickness * s.thickness
	z := 0.0
	for off, d := range s.table.All() {
		n := p.Add(off)
		if !s.negative.In(n) {
			continue
		}
		xy := d / s.ppm
		negZ := float64(s.negative.At(n)) / models.MaxSample * s.depth
		diff := math.Sqrt(math.Max(0, t2-xy*xy))
		z = math.Max(z, negZ+diff)

		// diff only shrinks from here on and negZ never exceeds depth.
		if z > s.depth+diff {
			break
		}
	}
	return z
}

func verifyHeight(p models.Point, z, depth, tol float64) error {
	if math.IsNaN(z) || z < -tol || z > depth+tol {
		return &InvariantError{Point: p, Z: z, Min: 0, Max: depth}
	}
	return nil
}

func heightToSample(z, depth float64) uint16 {
	v := z / depth * models.MaxSample
	switch {
	case v <= 0:
		return 0
	case v >= models.MaxSample:
		return models.MaxSample
	}
	return uint16(v)
}
