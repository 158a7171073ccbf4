package stamping

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetstamp/internal/models"
	"sheetstamp/pkg/forming"
	"sheetstamp/pkg/imageio"
)

// writeMask writes an 8-bit mask with black pixels at marks
func writeMask(t *testing.T, dir string, width, height int, marks ...image.Point) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, m := range marks {
		img.SetGray(m.X, m.Y, color.Gray{Y: 0})
	}

	path := filepath.Join(dir, "mask.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, img))
	require.NoError(t, file.Close())
	return path
}

func testParams(input string) *Params {
	return &Params{
		InputPath: input,
		Format:    imageio.PNG,
		Forming: forming.Params{
			PunchOutDepth:  2.0,
			SheetThickness: 0.7,
			FadeDistance:   1.0,
			PixelsPerMM:    10,
		},
		NumCores:       2,
		MirrorNegative: true,
		ProfileRow:     -1,
	}
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	input := writeMask(t, dir, 40, 24, image.Pt(5, 12), image.Pt(6, 12))

	s := NewStamper(testParams(input))
	require.NoError(t, s.Process())

	paths := s.Paths()
	assert.Equal(t, filepath.Join(dir, "mask-negative.png"), paths.Negative)
	assert.Equal(t, filepath.Join(dir, "mask-positive.png"), paths.Positive)

	neg, pos := s.Forms()
	writtenNeg, err := imageio.Load(paths.Negative)
	require.NoError(t, err)
	writtenPos, err := imageio.Load(paths.Positive)
	require.NoError(t, err)

	assert.True(t, imageio.FlipHorizontal(neg).Equal(writtenNeg), "negative form is written mirrored")
	assert.True(t, pos.Equal(writtenPos), "positive form is written as computed")

	// the mark at x=5 shows up at x=34 in the mirrored file
	assert.Equal(t, uint16(0), writtenNeg.At(models.Point{X: 34, Y: 12}))
	assert.Equal(t, uint16(0), neg.At(models.Point{X: 5, Y: 12}))

	// the positive form keeps the rest plane at MaxSample and dips under the mark
	assert.Equal(t, uint16(models.MaxSample), writtenPos.At(models.Point{X: 30, Y: 3}))
	assert.Less(t, writtenPos.At(models.Point{X: 5, Y: 12}), uint16(models.MaxSample))

	m := s.GetMetrics()
	assert.Equal(t, 40, m.Width)
	assert.Equal(t, 2.0/(40*24), m.MarkedFraction)
	assert.Equal(t, 0.0, m.Negative.Min)

	_, err = os.Stat(paths.Profile)
	assert.True(t, os.IsNotExist(err), "profile only written on request")
}

func TestProcessDeterministic(t *testing.T) {
	dir := t.TempDir()
	input := writeMask(t, dir, 30, 30, image.Pt(10, 10), image.Pt(20, 15), image.Pt(3, 27))

	run := func(cores int) (*models.HeightField, *models.HeightField) {
		p := testParams(input)
		p.NumCores = cores
		p.OutputDir = filepath.Join(dir, "out")
		s := NewStamper(p)
		require.NoError(t, s.Process())
		neg, err := imageio.Load(s.Paths().Negative)
		require.NoError(t, err)
		pos, err := imageio.Load(s.Paths().Positive)
		require.NoError(t, err)
		return neg, pos
	}

	neg1, pos1 := run(1)
	neg2, pos2 := run(4)
	assert.True(t, neg1.Equal(neg2))
	assert.True(t, pos1.Equal(pos2))
}

func TestProcessOptionalOutputs(t *testing.T) {
	dir := t.TempDir()
	input := writeMask(t, dir, 20, 10, image.Pt(10, 5))

	p := testParams(input)
	p.Format = imageio.TIFF
	p.MirrorNegative = false
	p.InvertPositive = true
	p.ProfileRow = 5
	s := NewStamper(p)
	require.NoError(t, s.Process())

	neg, pos := s.Forms()
	writtenNeg, err := imageio.Load(s.Paths().Negative)
	require.NoError(t, err)
	writtenPos, err := imageio.Load(s.Paths().Positive)
	require.NoError(t, err)

	assert.Equal(t, ".tif", filepath.Ext(s.Paths().Negative))
	assert.True(t, neg.Equal(writtenNeg))
	assert.True(t, imageio.Invert(pos).Equal(writtenPos))

	info, err := os.Stat(s.Paths().Profile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestProcessThreshold(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray16(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	// a dark gray dot that only counts as a mark after thresholding
	img.SetGray16(4, 4, color.Gray16{Y: 1000})
	path := filepath.Join(dir, "gray.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, img))
	require.NoError(t, file.Close())

	p := testParams(path)
	p.Threshold = 2000
	s := NewStamper(p)
	require.NoError(t, s.Process())
	neg, _ := s.Forms()
	assert.Equal(t, uint16(0), neg.At(models.Point{X: 4, Y: 4}))
	assert.Equal(t, 1.0/64, s.GetMetrics().MarkedFraction)
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()

	p := testParams(filepath.Join(dir, "missing.png"))
	assert.Error(t, NewStamper(p).Process())

	input := writeMask(t, dir, 4, 4)
	p = testParams(input)
	p.Forming.SheetThickness = 0
	assert.ErrorIs(t, NewStamper(p).Process(), forming.ErrInvalidParameter)
}

func TestProcessProgress(t *testing.T) {
	dir := t.TempDir()
	input := writeMask(t, dir, 6, 9, image.Pt(1, 1))

	var mu sync.Mutex
	final := make(map[forming.Stage]int)
	p := testParams(input)
	p.Progress = func(stage forming.Stage, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 9, total)
		final[stage] = done
	}
	require.NoError(t, NewStamper(p).Process())
	assert.Equal(t, map[forming.Stage]int{forming.StageNegative: 9, forming.StagePositive: 9}, final)
}

func TestDefaultProgressLogs(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	dir := t.TempDir()
	input := writeMask(t, dir, 5, 4, image.Pt(2, 2))
	p := testParams(input)
	p.NumCores = 1
	require.NoError(t, NewStamper(p).Process())

	out := buf.String()
	assert.Contains(t, out, "stage=negative percent=100")
	assert.Contains(t, out, "stage=positive percent=100")
	assert.Contains(t, out, "wrote negative form")
}

func TestOrient(t *testing.T) {
	neg := &models.HeightField{Pix: []uint16{1, 2, 3}, Width: 3, Height: 1}
	pos := &models.HeightField{Pix: []uint16{0, 10, models.MaxSample}, Width: 3, Height: 1}

	n, p := Orient(neg, pos, false, false)
	assert.Same(t, neg, n)
	assert.Same(t, pos, p)

	n, p = Orient(neg, pos, true, true)
	assert.Equal(t, []uint16{3, 2, 1}, n.Pix)
	assert.Equal(t, []uint16{models.MaxSample, models.MaxSample - 10, 0}, p.Pix)
	assert.Equal(t, []uint16{1, 2, 3}, neg.Pix)
}
