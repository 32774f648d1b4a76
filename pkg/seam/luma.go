package seam

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Luma selects how colour pixels are reduced to a single intensity before
// the gradient is taken.
type Luma string

const (
	// LumaRec709 weights channels 0.2126 R + 0.7152 G + 0.0722 B.
	LumaRec709 Luma = "rec709"

	// LumaRec601 uses the standard library gray model
	// (0.299 R + 0.587 G + 0.114 B).
	LumaRec601 Luma = "rec601"

	// LumaLab uses CIE L* lightness, which tracks perceived brightness more
	// closely than either linear weighting.
	LumaLab Luma = "lab"
)

// DefaultLuma is the gray conversion used when none is specified.
const DefaultLuma = LumaRec709

// ParseLuma converts a name into a [Luma]. The empty string selects
// [DefaultLuma].
func ParseLuma(s string) (Luma, error) {
	switch Luma(s) {
	case "":
		return DefaultLuma, nil
	case LumaRec709, LumaRec601, LumaLab:
		return Luma(s), nil
	}
	return "", fmt.Errorf("unknown luma %q (must be one of: rec709, rec601, lab)", s)
}

// Gray converts every pixel of img to an 8-bit intensity using mode.
// Alpha is ignored; pixels are treated as opaque.
func Gray(img *ColorImage, mode Luma) *GrayGrid {
	conv := lumaFunc(mode)
	out := NewGrid[uint8](img.Width, img.Height)
	for i, px := range img.Pix {
		out.Pix[i] = conv(px)
	}
	return out
}

func lumaFunc(mode Luma) func(color.NRGBA) uint8 {
	switch mode {
	case LumaRec601:
		return func(c color.NRGBA) uint8 {
			c.A = 0xff
			return color.GrayModel.Convert(c).(color.Gray).Y
		}
	case LumaLab:
		return func(c color.NRGBA) uint8 {
			cf := colorful.Color{
				R: float64(c.R) / 255,
				G: float64(c.G) / 255,
				B: float64(c.B) / 255,
			}
			l, _, _ := cf.Lab()
			return clampByte(l * 255)
		}
	default:
		return func(c color.NRGBA) uint8 {
			return clampByte(0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B))
		}
	}
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
