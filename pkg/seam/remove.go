package seam

import (
	errs "github.com/matzehuels/seamcarve/pkg/errors"
)

// Remove returns a copy of g with the pixels of s deleted.
//
// For every row y, columns left of s[y] are copied unchanged, column s[y] is
// dropped and the columns to its right move one position left. The result
// is one column narrower than g and has the same height. g is not modified.
//
// Remove works on any element type, so the same seam can be cut from a
// colour image, its gray version or its energy grid.
//
// A one-column grid, a seam of the wrong length or a seam column outside the
// grid is a broken caller contract and yields an error with code
// [errs.ErrCodeContract]; nothing is allocated in that case.
func Remove[T any](g *Grid[T], s Seam) (*Grid[T], error) {
	if g.Width <= 1 {
		return nil, errs.New(errs.ErrCodeContract, "cannot remove a seam from a %s grid", g)
	}
	if len(s) != g.Height {
		return nil, errs.New(errs.ErrCodeContract, "seam has %d entries, grid has %d rows", len(s), g.Height)
	}
	for y, x := range s {
		if x < 0 || x >= g.Width {
			return nil, errs.New(errs.ErrCodeContract, "seam column %d at row %d outside [0, %d]", x, y, g.Width-1)
		}
	}

	out := NewGrid[T](g.Width-1, g.Height)
	for y, x := range s {
		src, dst := g.Row(y), out.Row(y)
		copy(dst, src[:x])
		copy(dst[x:], src[x+1:])
	}
	return out, nil
}
