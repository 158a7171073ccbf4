package forming

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Stage names the computation a progress report belongs to.
type Stage string

const (
	StageNegative Stage = "negative"
	StagePositive Stage = "positive"
)

// ProgressFunc is told how many rows of a stage are finished. Calls are
// serialized, so implementations need no locking of their own.
type ProgressFunc func(stage Stage, rowsDone, rowsTotal int)

// Options controls how a stage is executed. The zero value uses every CPU
// and reports no progress.
type Options struct {
	// Workers is the number of rows computed concurrently.
	// Values below 1 mean runtime.NumCPU().
	Workers int

	// Progress, if set, is invoked once per completed row.
	Progress ProgressFunc
}

func (o *Options) workers() int {
	if o == nil || o.Workers < 1 {
		return runtime.NumCPU()
	}
	return o.Workers
}

func (o *Options) progress() ProgressFunc {
	if o == nil {
		return nil
	}
	return o.Progress
}

// runRows calls row for every y in [0, rows). Rows run concurrently on at
// most opts.workers() goroutines; the first error stops the scheduling of
// further rows and is returned.
func runRows(rows int, stage Stage, opts *Options, row func(y int) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(opts.workers())

	progress := opts.progress()
	var mu sync.Mutex
	done := 0

	for y := 0; y < rows; y++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := row(y); err != nil {
				return err
			}
			if progress != nil {
				mu.Lock()
				done++
				progress(stage, done, rows)
				mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}
