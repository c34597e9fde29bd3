// Package texture decodes page and cover images, builds flat-color
// fallbacks and composites the cover wrap into per-region slices.
package texture

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ErrUnknownFormat is returned when no decoder accepts the input.
var ErrUnknownFormat = errors.New("unknown image format")

// format is one decoder keyed by its magic prefix. '?' matches any byte.
type format struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

// formats are sniffed in order; anything else is read as TGA, which has
// no magic. image.Decode is not used: the tga package registers an empty
// magic that would claim every input.
var formats = []format{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode, png.DecodeConfig},
	{"jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig},
	{"gif", "GIF8?a", gif.Decode, gif.DecodeConfig},
	{"bmp", "BM????\x00\x00\x00\x00", bmp.Decode, bmp.DecodeConfig},
	{"webp", "RIFF????WEBPVP8", webp.Decode, webp.DecodeConfig},
}

var tgaFormat = format{"tga", "", tga.Decode, tga.DecodeConfig}

func match(magic string, b []byte) bool {
	if len(magic) != len(b) {
		return false
	}
	for i, c := range b {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

// sniff picks the decoder for r and returns a reader positioned at the
// start of the data.
func sniff(r io.Reader) (format, io.Reader) {
	br := bufio.NewReader(r)
	for _, f := range formats {
		b, err := br.Peek(len(f.magic))
		if err == nil && match(f.magic, b) {
			return f, br
		}
	}
	return tgaFormat, br
}

// DecodeError reports an image that could not be fetched or decoded.
// It is recoverable: callers fall back to a flat-color texture.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("texture: decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode reads png, jpeg, gif, bmp, webp or tga and returns it as NRGBA.
// source is only used for error reporting.
func Decode(r io.Reader, source string) (*image.NRGBA, error) {
	f, br := sniff(r)
	img, err := f.decode(br)
	if err != nil {
		return nil, &DecodeError{Source: source, Err: decodeErr(f, err)}
	}
	return ToNRGBA(img), nil
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte, source string) (*image.NRGBA, error) {
	return Decode(bytes.NewReader(data), source)
}

// DecodeConfig returns the dimensions of an image without decoding pixels.
func DecodeConfig(r io.Reader, source string) (image.Config, error) {
	f, br := sniff(r)
	cfg, err := f.config(br)
	if err != nil {
		return image.Config{}, &DecodeError{Source: source, Err: decodeErr(f, err)}
	}
	return cfg, nil
}

// decodeErr reports a failed TGA fallback as an unknown format, since
// anything without a known magic ends up there.
func decodeErr(f format, err error) error {
	if f.name == tgaFormat.name {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	return fmt.Errorf("%s: %w", f.name, err)
}

// ToNRGBA converts any image to a zero-origin *image.NRGBA.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
