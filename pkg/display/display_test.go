package display

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checker(width, height int) []byte {
	pix := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			if (x+y)%2 == 0 {
				pix[i], pix[i+1], pix[i+2] = 255, 255, 255
			}
			pix[i+3] = 255
		}
	}
	return pix
}

func TestPNGWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frame.png")
	w := NewPNGWriter(path)

	require.NoError(t, w.Present(checker(3, 2), 3, 2))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, b, a})
	r, g, b, a = img.At(1, 0).RGBA()
	assert.Equal(t, [4]uint32{0, 0, 0, 0xffff}, [4]uint32{r, g, b, a})
}

func TestImage_BadFrame(t *testing.T) {
	tests := []struct {
		name          string
		size          int
		width, height int
	}{
		{"Short buffer", 10, 2, 2},
		{"Long buffer", 20, 2, 2},
		{"Zero width", 0, 0, 4},
		{"Negative height", 16, 4, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Image(make([]byte, tt.size), tt.width, tt.height)
			assert.True(t, errors.Is(err, ErrBadFrame), "got %v", err)

			var buf bytes.Buffer
			assert.Error(t, EncodePNG(&buf, make([]byte, tt.size), tt.width, tt.height))
			assert.Zero(t, buf.Len())
		})
	}
}

func TestPresentFunc(t *testing.T) {
	var got color.RGBA
	var d Display = PresentFunc(func(pix []byte, width, height int) error {
		img, err := Image(pix, width, height)
		if err != nil {
			return err
		}
		got = img.RGBAAt(0, 0)
		return nil
	})

	require.NoError(t, d.Present(checker(2, 2), 2, 2))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, got)
}
