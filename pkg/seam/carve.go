package seam

import (
	"context"
	"fmt"
)

// ProgressFunc is called after every removed seam with the number of seams
// removed so far and the total that will be removed.
type ProgressFunc func(done, total int)

// Carver narrows images by repeatedly removing the lowest-energy vertical
// seam. The zero value carves top-down with [DefaultLuma] on one goroutine.
type Carver struct {
	// Direction of the cumulative cost sweep.
	Direction Direction

	// Luma selects the gray conversion used for energy.
	Luma Luma

	// Workers is passed to [GradientEnergy].
	Workers int

	// Progress, if set, is called after each removal.
	Progress ProgressFunc
}

// Columns clamps a requested column count for an image of the given width.
// At most width-1 columns can be removed, since a one-pixel-wide image cannot
// shrink further; negative requests become 0.
func Columns(width, n int) int {
	return max(0, min(n, width-1))
}

// Carve removes n seams from img and returns the narrowed image.
//
// n is clamped with [Columns] first, so the result is max(1, w-n) wide and as
// tall as img. img itself is never modified; with n clamped to 0 a copy is
// returned.
//
// ctx is checked between removals only. A cancelled context stops the loop
// before the next seam and its error is returned; a single removal always
// runs to completion.
func (c *Carver) Carve(ctx context.Context, img *ColorImage, n int) (*ColorImage, error) {
	out, _, err := c.carve(ctx, img, n, false)
	return out, err
}

// CarveSeams is like [Carver.Carve] but also returns the removed seams in
// removal order. Seam k is expressed in the coordinates of the image as it
// was before removal k.
func (c *Carver) CarveSeams(ctx context.Context, img *ColorImage, n int) (*ColorImage, []Seam, error) {
	return c.carve(ctx, img, n, true)
}

func (c *Carver) carve(ctx context.Context, img *ColorImage, n int, keep bool) (*ColorImage, []Seam, error) {
	if img.Empty() {
		return nil, nil, fmt.Errorf("carve: empty image")
	}
	total := Columns(img.Width, n)
	var seams []Seam
	if keep {
		seams = make([]Seam, 0, total)
	}

	out := img.Clone()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		s := c.Next(out)
		next, err := Remove(out, s)
		if err != nil {
			return nil, nil, fmt.Errorf("carve seam %d: %w", i+1, err)
		}
		out = next
		if keep {
			seams = append(seams, s)
		}
		if c.Progress != nil {
			c.Progress(i+1, total)
		}
	}
	return out, seams, nil
}

// Next returns the seam that the next removal from img would delete.
func (c *Carver) Next(img *ColorImage) Seam {
	dir := c.Direction
	if dir == "" {
		dir = DefaultDirection
	}
	energy := Energy(img, EnergyOptions{Luma: c.Luma, Workers: c.Workers})
	return Trace(Accumulate(energy, dir), dir)
}
