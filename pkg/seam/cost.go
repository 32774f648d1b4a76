package seam

import "fmt"

// Direction selects which boundary row the dynamic-programming sweep starts
// from. Both directions find a seam of the same minimal total energy; they
// can differ only in which of several equally cheap seams is chosen.
type Direction string

const (
	// TopDown starts at row 0 and sweeps downwards. It is the canonical
	// direction.
	TopDown Direction = "top-down"

	// BottomUp starts at the last row and sweeps upwards.
	BottomUp Direction = "bottom-up"
)

// DefaultDirection is the sweep direction used when none is specified.
const DefaultDirection = TopDown

// ParseDirection converts a name into a [Direction]. The empty string
// selects [DefaultDirection].
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "":
		return DefaultDirection, nil
	case TopDown, BottomUp:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q (must be one of: top-down, bottom-up)", s)
}

// rows returns the first row, the last row and the step of the sweep for a
// grid of height h.
func (d Direction) rows(h int) (first, last, step int) {
	if d == BottomUp {
		return h - 1, 0, -1
	}
	return 0, h - 1, 1
}

// Accumulate builds the cumulative cost grid for energy.
//
// The boundary row (row 0 for [TopDown], the last row for [BottomUp]) is a
// copy of the energy. Every following row r of the sweep satisfies
//
//	cost[r][c] = energy[r][c] + min(cost[p][c-1], cost[p][c], cost[p][c+1])
//
// where p is the previously processed row. Neighbour columns outside the grid
// are left out of the minimum; unlike [GradientEnergy] the window never wraps.
// Among equal candidates the smallest column index is taken.
//
// Rows are filled strictly in sweep order, each reading only the row before
// it, so the whole pass is O(w·h) time and space. Accumulate panics if energy
// is empty.
func Accumulate[S Sample](energy *Grid[S], dir Direction) *CostGrid {
	if energy.Empty() {
		panic("seam: cumulative cost of empty grid")
	}
	w, h := energy.Width, energy.Height
	cost := NewGrid[uint64](w, h)
	first, last, step := dir.rows(h)

	for x, e := range energy.Row(first) {
		cost.Set(x, first, uint64(e))
	}

	for y := first + step; y != last+step; y += step {
		prev := cost.Row(y - step)
		curr := cost.Row(y)
		for x, e := range energy.Row(y) {
			_, best := minWindow(prev, x)
			curr[x] = uint64(e) + best
		}
	}
	return cost
}

// minWindow returns the column and value of the smallest element of row
// among columns x-1, x and x+1, clamped to the row. Ties resolve to the
// smallest column.
func minWindow[S Sample](row []S, x int) (int, S) {
	lo, hi := max(x-1, 0), min(x+1, len(row)-1)
	best := lo
	for c := lo + 1; c <= hi; c++ {
		if row[c] < row[best] {
			best = c
		}
	}
	return best, row[best]
}
