package seam

import (
	"fmt"
	"image/color"
)

// Sample is the set of numeric element types a [Grid] can hold when it takes
// part in energy or cost arithmetic.
type Sample interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~float32 | ~float64
}

// Grid is a dense, row-major rectangle of Width × Height elements.
//
// Pix holds exactly Width*Height elements; the element at (x, y) lives at
// Pix[y*Width+x]. Grids entering the carving pipeline have Width ≥ 1 and
// Height ≥ 1.
type Grid[T any] struct {
	Width  int
	Height int
	Pix    []T
}

// Named grid shapes used by the pipeline.
type (
	// ColorImage is the externally owned colour image threaded across
	// carving iterations.
	ColorImage = Grid[color.NRGBA]

	// GrayGrid holds single-channel 8-bit intensities.
	GrayGrid = Grid[uint8]

	// EnergyGrid holds gradient magnitudes normalised to 0..255.
	EnergyGrid = Grid[uint8]

	// CostGrid holds cumulative path energies. uint64 cannot overflow for any
	// realistic image height at the 0..255 energy scale.
	CostGrid = Grid[uint64]
)

// NewGrid allocates a zeroed width × height grid.
// It panics if either dimension is negative.
func NewGrid[T any](width, height int) *Grid[T] {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("seam: negative grid size %dx%d", width, height))
	}
	return &Grid[T]{
		Width:  width,
		Height: height,
		Pix:    make([]T, width*height),
	}
}

// GridFromRows builds a grid from a slice of equally long rows.
// It returns an error if the rows are ragged.
func GridFromRows[T any](rows [][]T) (*Grid[T], error) {
	if len(rows) == 0 {
		return NewGrid[T](0, 0), nil
	}
	width := len(rows[0])
	g := NewGrid[T](width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d elements, want %d", y, len(row), width)
		}
		copy(g.Row(y), row)
	}
	return g, nil
}

// At returns the element at column x, row y.
func (g *Grid[T]) At(x, y int) T {
	return g.Pix[y*g.Width+x]
}

// Set stores v at column x, row y.
func (g *Grid[T]) Set(x, y int, v T) {
	g.Pix[y*g.Width+x] = v
}

// Row returns row y as a slice sharing the grid's storage.
func (g *Grid[T]) Row(y int) []T {
	start := y * g.Width
	return g.Pix[start : start+g.Width : start+g.Width]
}

// Rows copies the grid into a slice of rows.
func (g *Grid[T]) Rows() [][]T {
	rows := make([][]T, g.Height)
	for y := range rows {
		rows[y] = append([]T(nil), g.Row(y)...)
	}
	return rows
}

// Clone returns a deep copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	return &Grid[T]{
		Width:  g.Width,
		Height: g.Height,
		Pix:    append([]T(nil), g.Pix...),
	}
}

// Empty reports whether the grid has no elements.
func (g *Grid[T]) Empty() bool {
	return g == nil || g.Width == 0 || g.Height == 0
}

// String returns the grid's dimensions, e.g. "640x480".
func (g *Grid[T]) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
