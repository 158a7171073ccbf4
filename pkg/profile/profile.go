// Package profile plots a cross-section through both forms, which is the
// quickest way to eyeball sheet clearance on a real design.
package profile

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"sheetstamp/internal/models"
	"sheetstamp/pkg/forming"
)

var (
	negativeColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	positiveColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// RowHeights returns row y of f as (x mm, height mm) points.
func RowHeights(f *models.HeightField, y int, punchOutDepthMM, pixelsPerMM float64) (plotter.XYs, error) {
	if y < 0 || y >= f.Height {
		return nil, fmt.Errorf("row %d outside field of height %d", y, f.Height)
	}
	row := f.Row(y)
	pts := make(plotter.XYs, len(row))
	for x, v := range row {
		pts[x] = plotter.XY{
			X: float64(x) / pixelsPerMM,
			Y: forming.SampleToMM(v, punchOutDepthMM),
		}
	}
	return pts, nil
}

// Plot builds the cross-section plot of row y. Both forms must be in the
// same coordinate frame, i.e. before any output mirroring.
func Plot(negative, positive *models.HeightField, y int, params forming.Params) (*plot.Plot, error) {
	negPts, err := RowHeights(negative, y, params.PunchOutDepth, params.PixelsPerMM)
	if err != nil {
		return nil, err
	}
	posPts, err := RowHeights(positive, y, params.PunchOutDepth, params.PixelsPerMM)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Row %d cross-section (sheet %.2f mm)", y, params.SheetThickness)
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Height (mm)"
	p.Y.Min = 0
	p.Y.Max = params.PunchOutDepth
	p.Add(plotter.NewGrid())

	negLine, err := plotter.NewLine(negPts)
	if err != nil {
		return nil, err
	}
	negLine.Color = negativeColor
	negLine.Width = vg.Points(1)

	posLine, err := plotter.NewLine(posPts)
	if err != nil {
		return nil, err
	}
	posLine.Color = positiveColor
	posLine.Width = vg.Points(1)
	posLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(negLine, posLine)
	p.Legend.Add("negative (punch)", negLine)
	p.Legend.Add("positive (die)", posLine)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// Save writes the cross-section of row y to path. The image format follows
// the file extension.
func Save(path string, negative, positive *models.HeightField, y int, params forming.Params) error {
	p, err := Plot(negative, positive, y, params)
	if err != nil {
		return err
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save profile plot: %w", err)
	}
	return nil
}
