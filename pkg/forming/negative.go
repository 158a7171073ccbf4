package forming

import (
	"errors"

	"sheetstamp/internal/models"
	"sheetstamp/pkg/neighbors"
)

// ComputeNegativeForm builds the punch height field from an input whose
// mark pixels hold models.Mark. Each output sample is Fade applied to the
// distance in mm from the nearest mark, searched within fadeDistanceMM.
// Pixels without a mark in range are MaxSample.
//
// The result is in the input's coordinate frame; mirroring for use from the
// opposite face of the sheet is left to the output stage.
func ComputeNegativeForm(input *models.HeightField, fadeDistanceMM, pixelsPerMM float64, opts *Options) (*models.HeightField, error) {
	if input == nil {
		return nil, errors.New("nil input field")
	}
	if err := errors.Join(
		checkPositive("fade distance", fadeDistanceMM),
		checkPositive("pixels per mm", pixelsPerMM),
	); err != nil {
		return nil, err
	}

	table := neighbors.Build(fadeDistanceMM * pixelsPerMM)
	out := models.NewHeightField(input.Width, input.Height)

	err := runRows(input.Height, StageNegative, opts, func(y int) error {
		row := out.Row(y)
		for x := range row {
			d, ok := nearestMark(input, models.Point{X: x, Y: y}, table)
			if !ok {
				row[x] = models.MaxSample
				continue
			}
			row[x] = Fade(d/pixelsPerMM, fadeDistanceMM)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// nearestMark returns the pixel distance from p to the closest mark inside
// the table's disk. The table is sorted by distance, so the first hit wins.
func nearestMark(input *models.HeightField, p models.Point, table *neighbors.Table) (float64, bool) {
	for off, d := range table.All() {
		n := p.Add(off)
		if input.In(n) && input.At(n) == models.Mark {
			return d, true
		}
	}
	return 0, false
}
