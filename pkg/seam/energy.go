package seam

import (
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// MaxEnergy is the value the strongest gradient of an image is mapped to.
const MaxEnergy = 255

// EnergyOptions configures [Energy].
type EnergyOptions struct {
	// Luma selects the gray conversion. Empty means [DefaultLuma].
	Luma Luma

	// Workers is the number of goroutines evaluating bands of rows.
	// Values below 2 evaluate serially. The result does not depend on it.
	Workers int
}

// Energy estimates per-pixel visual importance of img.
//
// The image is first reduced to gray intensities (see [Gray]) and then passed
// to [GradientEnergy]. The returned grid has the same width and height as img.
func Energy(img *ColorImage, opts EnergyOptions) *EnergyGrid {
	luma := opts.Luma
	if luma == "" {
		luma = DefaultLuma
	}
	return GradientEnergy(Gray(img, luma), opts.Workers)
}

// GradientEnergy computes the normalised gradient magnitude of gray.
//
// For every pixel the 8 neighbours are sampled with toroidal addressing (the
// right neighbour of the last column is column 0, the row above row 0 is the
// last row) and combined with the kernel pair
//
//	Kx = [ 1 0 -1 ]    Ky = [  1  2  1 ]
//	     [ 2 0 -2 ]         [  0  0  0 ]
//	     [ 1 0 -1 ]         [ -1 -2 -1 ]
//
// where kernel rows run from the row above to the row below and kernel
// columns from left to right. The centre pixel never contributes. The
// magnitude sqrt(Sx² + Sy²) is then scaled linearly so that the largest
// magnitude becomes [MaxEnergy], rounding to the nearest integer.
//
// A uniform image has no gradient anywhere and yields an all-zero grid.
//
// GradientEnergy panics if gray is empty.
func GradientEnergy[S Sample](gray *Grid[S], workers int) *EnergyGrid {
	if gray.Empty() {
		panic("seam: energy of empty grid")
	}
	w, h := gray.Width, gray.Height
	mag := make([]float64, w*h)

	band := func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				mag[y*w+x] = gradientAt(gray, x, y)
			}
		}
	}

	if workers < 2 || h < 2 {
		band(0, h)
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		step := (h + workers - 1) / workers
		for y0 := 0; y0 < h; y0 += step {
			y1 := min(y0+step, h)
			g.Go(func() error {
				band(y0, y1)
				return nil
			})
		}
		_ = g.Wait()
	}

	return normalize(mag, w, h)
}

// gradientAt returns the unnormalised gradient magnitude at (x, y).
func gradientAt[S Sample](g *Grid[S], x, y int) float64 {
	w, h := g.Width, g.Height
	xl, xr := (x-1+w)%w, (x+1)%w
	yu, yd := (y-1+h)%h, (y+1)%h

	tl, t, tr := float64(g.At(xl, yu)), float64(g.At(x, yu)), float64(g.At(xr, yu))
	l, r := float64(g.At(xl, y)), float64(g.At(xr, y))
	bl, b, br := float64(g.At(xl, yd)), float64(g.At(x, yd)), float64(g.At(xr, yd))

	sx := tl - tr + 2*l - 2*r + bl - br
	sy := tl + 2*t + tr - bl - 2*b - br
	return math.Sqrt(sx*sx + sy*sy)
}

func normalize(mag []float64, w, h int) *EnergyGrid {
	out := NewGrid[uint8](w, h)
	peak := floats.Max(mag)
	if peak == 0 {
		return out
	}
	for i, m := range mag {
		out.Pix[i] = uint8(math.Round(m * MaxEnergy / peak))
	}
	return out
}
