package seam

import "fmt"

// Seam lists, for every image row y, the column Seam[y] whose pixel belongs to
// the seam. Consecutive entries differ by at most one.
type Seam []int

// Trace recovers a minimal-cost seam from a cumulative cost grid built by
// [Accumulate] with the same direction.
//
// The seam is anchored at the cheapest column of the terminal row of the
// sweep. From there Trace walks back towards the boundary row, each time
// choosing the cheapest of the up to three columns adjacent to the column
// picked in the row after it. The window is clamped at the grid edges and
// ties go to the smallest column, exactly as in [Accumulate], so every step
// lands on a true predecessor.
//
// The returned seam is indexed by image row regardless of direction. Trace
// panics if cost is empty.
func Trace[S Sample](cost *Grid[S], dir Direction) Seam {
	if cost.Empty() {
		panic("seam: trace of empty grid")
	}
	first, last, step := dir.rows(cost.Height)
	s := make(Seam, cost.Height)

	x := argmin(cost.Row(last))
	s[last] = x

	for y := last - step; y != first-step; y -= step {
		x, _ = minWindow(cost.Row(y), x)
		s[y] = x
	}
	return s
}

// argmin returns the index of the smallest element, preferring the lowest
// index on ties.
func argmin[S Sample](row []S) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] < row[best] {
			best = i
		}
	}
	return best
}

// Validate checks that s is a well-formed seam for a width × height image:
// one entry per row, every entry inside [0, width-1], and adjacent entries at
// most one column apart.
func (s Seam) Validate(width, height int) error {
	if len(s) != height {
		return fmt.Errorf("seam has %d entries, image has %d rows", len(s), height)
	}
	for y, x := range s {
		if x < 0 || x >= width {
			return fmt.Errorf("seam column %d at row %d outside [0, %d]", x, y, width-1)
		}
		if y > 0 {
			if d := x - s[y-1]; d < -1 || d > 1 {
				return fmt.Errorf("seam jumps from column %d to %d at row %d", s[y-1], x, y)
			}
		}
	}
	return nil
}
