package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-kdtracer/pkg/core"
)

// Bitmap is a finished frame: row-major RGBA bytes, top row first
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte
}

// NewBitmap allocates a zeroed bitmap
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// At returns the pixel at (x, y)
func (b *Bitmap) At(x, y int) color.RGBA {
	i := (y*b.Width + x) * 4
	return color.RGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// Image wraps the pixels as an *image.RGBA without copying
func (b *Bitmap) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// toByte maps a [0, 1] channel to 0..255 with rounding
func toByte(c float64) byte {
	return byte(255*c + 0.5)
}

// putPixel writes a linear color into pix at byte offset i. Non-finite
// colors become black.
func putPixel(pix []byte, i int, c core.Vec3, gamma float64) {
	if !c.IsFinite() {
		c = core.Vec3{}
	}
	c = c.Clamp(0, 1).GammaCorrect(gamma).Clamp(0, 1)
	pix[i] = toByte(c.X)
	pix[i+1] = toByte(c.Y)
	pix[i+2] = toByte(c.Z)
	pix[i+3] = 255
}
