package texture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Format is an output encoding for exported textures.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "png" or "webp" (case-insensitive, optional dot).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case FormatPNG, FormatWebP:
		return f, nil
	default:
		return "", fmt.Errorf("texture: unsupported export format %q", s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes img in the given format. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("texture: encode webp: %w", err)
		}
	case FormatPNG, "":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("texture: encode png: %w", err)
		}
	default:
		return fmt.Errorf("texture: unsupported export format %q", f)
	}
	return nil
}

// Export writes the merged raster and every non-empty slice of c into
// dir as merged<ext> and <slice><ext>, creating dir if needed. It returns
// the written paths in slice order, merged first.
func Export(dir string, c *Cover, f Format) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("texture: nothing to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("texture: create export dir: %w", err)
	}

	var paths []string
	write := func(name string, img image.Image) error {
		path := filepath.Join(dir, name+f.Ext())
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("texture: export %s: %w", name, err)
		}
		if err := Encode(file, img, f); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("texture: export %s: %w", name, err)
		}
		paths = append(paths, path)
		return nil
	}

	if err := write("merged", c.Merged); err != nil {
		return paths, err
	}
	for _, s := range c.Slices {
		if s.Image == nil {
			continue
		}
		if err := write(string(s.Name), s.Image); err != nil {
			return paths, err
		}
	}
	return paths, nil
}
