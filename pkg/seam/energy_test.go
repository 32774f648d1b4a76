package seam

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergyShape(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 7}, {7, 1}, {4, 3}, {31, 17}}
	for _, sz := range sizes {
		t.Run(fmt.Sprintf("%dx%d", sz[0], sz[1]), func(t *testing.T) {
			img := randomImage(sz[0], sz[1], 1)
			e := Energy(img, EnergyOptions{})
			assert.Equal(t, sz[0], e.Width)
			assert.Equal(t, sz[1], e.Height)
			assert.Len(t, e.Pix, sz[0]*sz[1])
		})
	}
}

func TestEnergyUniformImageIsZero(t *testing.T) {
	for _, luma := range []Luma{LumaRec709, LumaRec601, LumaLab} {
		for _, sz := range [][2]int{{1, 1}, {3, 3}, {16, 9}} {
			t.Run(fmt.Sprintf("%s/%dx%d", luma, sz[0], sz[1]), func(t *testing.T) {
				img := NewGrid[color.NRGBA](sz[0], sz[1])
				for i := range img.Pix {
					img.Pix[i] = color.NRGBA{R: 120, G: 30, B: 200, A: 0xff}
				}
				e := Energy(img, EnergyOptions{Luma: luma})
				for i, v := range e.Pix {
					require.Zerof(t, v, "pixel %d", i)
				}
			})
		}
	}
}

func TestEnergySpot(t *testing.T) {
	e := Energy(spotImage(t), EnergyOptions{})

	// The bright pixel's own value is excluded from both kernels, so only its
	// neighbours light up. Column 0 is two columns away even with wrapping.
	want := [][]uint8{
		{0, 180, 255, 180},
		{0, 255, 0, 255},
		{0, 180, 255, 180},
	}
	if diff := cmp.Diff(want, e.Rows()); diff != "" {
		t.Errorf("energy mismatch (-want +got):\n%s", diff)
	}
}

func TestEnergyWrapsAround(t *testing.T) {
	// A single row: the rows above and below wrap onto the row itself, so
	// Sy vanishes and Sx = 4·(left − right).
	img := grayImage(t, [][]uint8{{0, 0, 0, 100}})
	e := Energy(img, EnergyOptions{})

	// Column 0's left neighbour is column 3.
	assert.Equal(t, []uint8{255, 0, 255, 0}, e.Row(0))
}

func TestEnergyNormalizesToMax(t *testing.T) {
	e := Energy(randomImage(20, 10, 7), EnergyOptions{})
	var peak uint8
	for _, v := range e.Pix {
		peak = max(peak, v)
	}
	assert.Equal(t, uint8(MaxEnergy), peak)
}

func TestEnergyWorkersMatchSerial(t *testing.T) {
	img := randomImage(37, 23, 42)
	serial := Energy(img, EnergyOptions{Workers: 1})
	for _, workers := range []int{2, 3, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			got := Energy(img, EnergyOptions{Workers: workers})
			if diff := cmp.Diff(serial, got); diff != "" {
				t.Errorf("parallel energy differs (-serial +parallel):\n%s", diff)
			}
		})
	}
}

func TestGradientEnergyEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { GradientEnergy(NewGrid[uint8](0, 3), 1) })
}

func TestParseLuma(t *testing.T) {
	tests := []struct {
		in      string
		want    Luma
		wantErr bool
	}{
		{"", DefaultLuma, false},
		{"rec709", LumaRec709, false},
		{"rec601", LumaRec601, false},
		{"lab", LumaLab, false},
		{"REC709", "", true},
		{"hsv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLuma(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLuma(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLuma(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGrayModes(t *testing.T) {
	img := grayImage(t, [][]uint8{{0, 128, 255}})
	for _, luma := range []Luma{LumaRec709, LumaRec601} {
		// Neutral grays keep their value under linear weightings.
		assert.Equal(t, []uint8{0, 128, 255}, Gray(img, luma).Row(0), luma)
	}

	lab := Gray(img, LumaLab).Row(0)
	assert.Equal(t, uint8(0), lab[0])
	assert.Equal(t, uint8(255), lab[2])
	assert.Less(t, lab[0], lab[1])
	assert.Less(t, lab[1], lab[2])
}
