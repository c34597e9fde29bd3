package debug

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/flipbook/internal/engine/texture"
)

func TestFlipRows(t *testing.T) {
	// Two rows, bottom row red, top row blue.
	pixels := []byte{
		0xff, 0, 0, 0xff,
		0, 0, 0xff, 0xff,
	}
	img, err := FlipRows(pixels, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{B: 0xff, A: 0xff}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, img.NRGBAAt(0, 1))

	_, err = FlipRows(pixels, 2, 2)
	assert.Error(t, err)
}

func TestCaptureFromPixels(t *testing.T) {
	for _, f := range []texture.Format{texture.FormatPNG, texture.FormatWebP} {
		t.Run(string(f), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "shots")
			sc := NewScreenshotCapture(dir, "book", f)
			sc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

			pixels := make([]byte, 4*3*4)
			for i := 3; i < len(pixels); i += 4 {
				pixels[i] = 0xff
			}
			name, err := sc.CaptureFromPixels(pixels, 4, 3)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "book_2024-03-01_12-30-00"+f.Ext()), name)

			data, err := os.ReadFile(name)
			require.NoError(t, err)
			img, err := texture.DecodeBytes(data, name)
			require.NoError(t, err)
			assert.Equal(t, 4, img.Bounds().Dx())
			assert.Equal(t, 3, img.Bounds().Dy())
		})
	}
}

func TestDefaultFormatIsPNG(t *testing.T) {
	sc := NewScreenshotCapture("", "shot", "")
	assert.Equal(t, ".png", filepath.Ext(sc.GenerateFilename()))
}
