package seam

import (
	"image"
	"image/color"
	"image/draw"
)

// FromImage copies any [image.Image] into a [ColorImage]. The image's bounds
// are translated so that its top-left pixel becomes (0, 0).
func FromImage(src image.Image) *ColorImage {
	b := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}

	out := NewGrid[color.NRGBA](b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		row := out.Row(y)
		pix := nrgba.Pix[y*nrgba.Stride:]
		for x := range row {
			i := x * 4
			row[x] = color.NRGBA{R: pix[i], G: pix[i+1], B: pix[i+2], A: pix[i+3]}
		}
	}
	return out
}

// ToImage converts a [ColorImage] into an [image.NRGBA].
func ToImage(g *ColorImage) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		pix := img.Pix[y*img.Stride:]
		for x, c := range g.Row(y) {
			i := x * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

// GrayImage converts an 8-bit grid, such as an [EnergyGrid], into an
// [image.Gray] for viewing or encoding.
func GrayImage(g *Grid[uint8]) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		copy(img.Pix[y*img.Stride:], g.Row(y))
	}
	return img
}
