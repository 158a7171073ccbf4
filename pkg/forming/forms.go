package forming

import (
	"fmt"

	"sheetstamp/internal/models"
)

// ComputeForms runs both stages on input. The negative form is fully
// populated before the positive form is started.
func ComputeForms(input *models.HeightField, params Params, opts *Options) (negative, positive *models.HeightField, err error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	negative, err = ComputeNegativeForm(input, params.FadeDistance, params.PixelsPerMM, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("negative form: %w", err)
	}

	positive, err = ComputePositiveForm(negative, params.PunchOutDepth, params.SheetThickness, params.PixelsPerMM, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("positive form: %w", err)
	}
	return negative, positive, nil
}

// SampleToMM converts a sample of either form into a height in mm.
func SampleToMM(v uint16, punchOutDepthMM float64) float64 {
	return float64(v) / models.MaxSample * punchOutDepthMM
}
