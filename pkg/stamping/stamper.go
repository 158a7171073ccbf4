// Package stamping runs the complete tool generation: it loads a marked
// bitmap, computes the negative and positive forms, writes them and
// reports statistics about the result.
package stamping

import (
	"fmt"
	"log/slog"
	"time"

	"sheetstamp/internal/models"
	"sheetstamp/pkg/forming"
	"sheetstamp/pkg/imageio"
	"sheetstamp/pkg/metrics"
	"sheetstamp/pkg/profile"
)

// Params holds everything one run needs.
type Params struct {
	// InputPath is the marked bitmap. Pixels at 0 are punched through.
	InputPath string

	// OutputDir receives the forms; empty means the input's directory.
	OutputDir string

	// Format of the written forms.
	Format imageio.Format

	// Forming is the physical tool description.
	Forming forming.Params

	// NumCores is the number of rows computed in parallel.
	NumCores int

	// Threshold binarizes the input before use; zero disables it.
	Threshold uint16

	// MirrorNegative writes the negative form mirrored left to right, as
	// seen from the punch side of the sheet.
	MirrorNegative bool

	// InvertPositive writes the positive form as MaxSample minus height.
	// Un-inverted, MaxSample is the rest plane and 0 the deepest point of
	// the die; inverted, the rest plane is 0.
	InvertPositive bool

	// ProfileRow, when not negative, selects the row written as a
	// cross-section plot.
	ProfileRow int

	// Progress replaces the default progress logging when set.
	Progress forming.ProgressFunc
}

// Stamper carries one run from input bitmap to written forms.
type Stamper struct {
	params *Params

	input    *models.HeightField
	negative *models.HeightField
	positive *models.HeightField

	paths   imageio.Paths
	metrics metrics.Report
}

// NewStamper creates a stamper for params.
func NewStamper(params *Params) *Stamper {
	return &Stamper{
		params: params,
		paths:  imageio.OutputPaths(params.InputPath, params.OutputDir, params.Format),
	}
}

// Process runs the complete pipeline
func (s *Stamper) Process() error {
	log := Logger()
	if err := s.params.Forming.Validate(); err != nil {
		return err
	}

	// Step 1: Load the marked bitmap
	log.Info("loading input", "path", s.params.InputPath)
	if err := s.loadInput(); err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	// Step 2: Distance field
	if err := s.computeNegative(); err != nil {
		return fmt.Errorf("failed to compute negative form: %w", err)
	}

	// Step 3: Offset synthesis; needs the complete negative form
	if err := s.computePositive(); err != nil {
		return fmt.Errorf("failed to compute positive form: %w", err)
	}

	// Step 4: Write both forms in their output orientation
	if err := s.saveForms(); err != nil {
		return err
	}

	// Step 5: Optional cross-section
	if s.params.ProfileRow >= 0 {
		if err := profile.Save(s.paths.Profile, s.negative, s.positive, s.params.ProfileRow, s.params.Forming); err != nil {
			log.Warn("failed to write profile", "row", s.params.ProfileRow, "err", err)
		} else {
			log.Info("wrote profile", "path", s.paths.Profile)
		}
	}

	// Step 6: Statistics
	s.metrics = metrics.Compute(s.input, s.negative, s.positive, s.params.Forming.PunchOutDepth)
	return nil
}

func (s *Stamper) loadInput() error {
	input, err := imageio.Load(s.params.InputPath)
	if err != nil {
		return err
	}
	if s.params.Threshold > 0 {
		input = imageio.Binarize(input, s.params.Threshold)
	}
	s.input = input
	Logger().Info("loaded input",
		"width", input.Width,
		"height", input.Height,
		"marked", metrics.MarkedFraction(input))
	return nil
}

func (s *Stamper) computeNegative() error {
	p := s.params.Forming
	Logger().Info("computing negative form", "fadeDistanceMM", p.FadeDistance, "radiusPx", p.FadeRadius())
	start := time.Now()
	neg, err := forming.ComputeNegativeForm(s.input, p.FadeDistance, p.PixelsPerMM, s.options())
	if err != nil {
		return err
	}
	s.negative = neg
	Logger().Info("negative form done", "elapsed", time.Since(start))
	return nil
}

func (s *Stamper) computePositive() error {
	p := s.params.Forming
	Logger().Info("computing positive form", "sheetThicknessMM", p.SheetThickness, "radiusPx", p.SheetRadius())
	start := time.Now()
	pos, err := forming.ComputePositiveForm(s.negative, p.PunchOutDepth, p.SheetThickness, p.PixelsPerMM, s.options())
	if err != nil {
		return err
	}
	s.positive = pos
	Logger().Info("positive form done", "elapsed", time.Since(start))
	return nil
}

func (s *Stamper) saveForms() error {
	neg, pos := Orient(s.negative, s.positive, s.params.MirrorNegative, s.params.InvertPositive)
	if err := imageio.Save(s.paths.Negative, neg, s.params.Format); err != nil {
		return fmt.Errorf("failed to save negative form: %w", err)
	}
	Logger().Info("wrote negative form", "path", s.paths.Negative, "mirrored", s.params.MirrorNegative)
	if err := imageio.Save(s.paths.Positive, pos, s.params.Format); err != nil {
		return fmt.Errorf("failed to save positive form: %w", err)
	}
	Logger().Info("wrote positive form", "path", s.paths.Positive, "inverted", s.params.InvertPositive)
	return nil
}

func (s *Stamper) options() *forming.Options {
	progress := s.params.Progress
	if progress == nil {
		progress = percentLogger()
	}
	return &forming.Options{Workers: s.params.NumCores, Progress: progress}
}

// Orient applies the output conventions. The forms passed in are left
// untouched.
func Orient(negative, positive *models.HeightField, mirrorNegative, invertPositive bool) (*models.HeightField, *models.HeightField) {
	if mirrorNegative {
		negative = imageio.FlipHorizontal(negative)
	}
	if invertPositive {
		positive = imageio.Invert(positive)
	}
	return negative, positive
}

// percentLogger logs whenever a stage passes another whole percent.
func percentLogger() forming.ProgressFunc {
	last := make(map[forming.Stage]int)
	return func(stage forming.Stage, done, total int) {
		pct := done * 100 / total
		if pct > last[stage] {
			last[stage] = pct
			Logger().Debug("progress", slog.String("stage", string(stage)), slog.Int("percent", pct))
		}
	}
}

// GetMetrics returns the statistics of the last successful Process call.
func (s *Stamper) GetMetrics() metrics.Report {
	return s.metrics
}

// Paths returns where the outputs are written.
func (s *Stamper) Paths() imageio.Paths {
	return s.paths
}

// Forms returns the computed forms in the input's coordinate frame, before
// output orientation is applied.
func (s *Stamper) Forms() (negative, positive *models.HeightField) {
	return s.negative, s.positive
}
