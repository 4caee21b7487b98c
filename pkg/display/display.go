// Package display hands finished frames to whatever shows or stores them.
package display

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrBadFrame is returned when the pixel buffer does not match the size
var ErrBadFrame = errors.New("pixel buffer does not match frame size")

// Display receives finished RGBA frames, row-major with the top row first
type Display interface {
	Present(pix []byte, width, height int) error
}

// PresentFunc adapts a function to Display
type PresentFunc func(pix []byte, width, height int) error

// Present calls f
func (f PresentFunc) Present(pix []byte, width, height int) error {
	return f(pix, width, height)
}

// Image wraps a frame as an *image.RGBA without copying
func Image(pix []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return nil, errors.Wrapf(ErrBadFrame, "%d bytes for %dx%d", len(pix), width, height)
	}
	return &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// EncodePNG writes a frame to w as PNG
func EncodePNG(w io.Writer, pix []byte, width, height int) error {
	img, err := Image(pix, width, height)
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, img), "encode png")
}

// PNGWriter saves every presented frame to Path, creating parent directories
type PNGWriter struct {
	Path string
}

// NewPNGWriter creates a PNG writer for path
func NewPNGWriter(path string) *PNGWriter {
	return &PNGWriter{Path: path}
}

// Present encodes the frame and replaces the file at Path
func (p *PNGWriter) Present(pix []byte, width, height int) error {
	if dir := filepath.Dir(p.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}

	file, err := os.Create(p.Path)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	if err := EncodePNG(file, pix, width, height); err != nil {
		file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "close output file")
}
