// Package neighbors enumerates the integer pixel offsets inside a disk,
// ordered by their distance from the center.
package neighbors

import (
	"cmp"
	"fmt"
	"iter"
	"math"
	"slices"

	"sheetstamp/internal/models"
)

// entry is one offset of a Table together with its Euclidean length in pixels.
type entry struct {
	Offset   models.Point
	Distance float64
}

// Table holds every integer offset within a radius, sorted by ascending
// distance. Offsets at the same distance keep the order in which they were
// generated: row by row from the top, left to right inside a row.
//
// A Table is immutable and safe for concurrent use.
type Table struct {
	entries []entry
}

// Build returns the table for maxRadius, measured in pixels. Offsets at
// exactly maxRadius are included. Build panics if maxRadius is negative or
// NaN; callers validate user supplied radii before getting here.
func Build(maxRadius float64) *Table {
	if !(maxRadius >= 0) || math.IsInf(maxRadius, 0) {
		panic(fmt.Sprintf("neighbors: invalid radius %v", maxRadius))
	}

	r2 := maxRadius * maxRadius
	endY := int(math.Floor(maxRadius))

	var entries []entry
	for y := -endY; y <= endY; y++ {
		endX := int(math.Floor(math.Sqrt(math.Max(0, r2-float64(y*y)))))
		for x := -endX; x <= endX; x++ {
			entries = append(entries, entry{
				Offset:   models.Point{X: x, Y: y},
				Distance: math.Sqrt(float64(x*x + y*y)),
			})
		}
	}

	// Stable sort keeps generation order inside groups of equal distance.
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	return &Table{entries: entries}
}

// All iterates over the entries in ascending distance order. The sequence
// can be ranged over any number of times.
func (t *Table) All() iter.Seq2[models.Point, float64] {
	return func(yield func(models.Point, float64) bool) {
		for _, e := range t.entries {
			if !yield(e.Offset, e.Distance) {
				return
			}
		}
	}
}
