// Package pages builds the book's leaves, the joint chain they ride on,
// and the per-frame rotation that turns them.
package pages

import (
	"image/color"
	"math"
)

// SurfaceKind tells whether a page side shows an image or a flat color.
type SurfaceKind int

const (
	SurfaceColor SurfaceKind = iota
	SurfaceImage
)

// Surface is one side of a leaf.
type Surface struct {
	Kind   SurfaceKind
	Source string
	Color  color.NRGBA
}

// ImageSurface returns a side backed by an image reference.
func ImageSurface(source string) Surface {
	return Surface{Kind: SurfaceImage, Source: source}
}

// ColorSurface returns a flat-color side.
func ColorSurface(c color.NRGBA) Surface {
	return Surface{Kind: SurfaceColor, Color: c}
}

// Page is one physical leaf: two sides, a fallback color and a thickness.
type Page struct {
	Front     Surface
	Back      Surface
	Color     color.NRGBA
	Thickness float32
	Guard     bool
}

// BuildOptions describes the leaves to build.
type BuildOptions struct {
	Images     []string
	Thickness  float32
	Color      color.NRGBA // inside-cover color, used for blank sides
	GuardPage  bool
	GuardColor *color.NRGBA // nil falls back to Color
}

// Build pairs images into leaves. The first leaf has a blank front and
// images[0] on its back; the rest are paired (1,2), (3,4)... and an odd
// image count ends with a blank leaf. Empty image references become flat
// sides. With guard pages, a thin blank leaf is added at each end and the
// outermost content leaves take the guard color; otherwise the outermost
// leaves are thinned to a third.
func Build(opts BuildOptions) []Page {
	surface := func(i int) Surface {
		if i >= len(opts.Images) || opts.Images[i] == "" {
			return ColorSurface(opts.Color)
		}
		return ImageSurface(opts.Images[i])
	}
	leaf := func(front, back Surface) Page {
		return Page{Front: front, Back: back, Color: opts.Color, Thickness: opts.Thickness}
	}

	var out []Page
	n := len(opts.Images)
	if n == 0 {
		out = append(out, leaf(ColorSurface(opts.Color), ColorSurface(opts.Color)))
	} else {
		out = append(out, leaf(ColorSurface(opts.Color), surface(0)))
		for i := 1; i < n; i += 2 {
			out = append(out, leaf(surface(i), surface(i+1)))
		}
		if n%2 != 0 {
			out = append(out, leaf(ColorSurface(opts.Color), ColorSurface(opts.Color)))
		}
	}

	first, last := &out[0], &out[len(out)-1]
	if !opts.GuardPage {
		first.Thickness = opts.Thickness / 3
		last.Thickness = opts.Thickness / 3
		return out
	}

	guard := opts.Color
	if opts.GuardColor != nil {
		guard = *opts.GuardColor
	}
	recolor(first, opts.Color, guard)
	recolor(last, opts.Color, guard)

	g := Page{
		Front:     ColorSurface(guard),
		Back:      ColorSurface(guard),
		Color:     guard,
		Thickness: opts.Thickness / 3,
		Guard:     true,
	}
	out = append([]Page{g}, out...)
	return append(out, g)
}

func recolor(p *Page, from, to color.NRGBA) {
	p.Color = to
	if p.Front.Kind == SurfaceColor && p.Front.Color == from {
		p.Front.Color = to
	}
	if p.Back.Kind == SurfaceColor && p.Back.Color == from {
		p.Back.Color = to
	}
}

// TotalPages is the number of turnable spreads for imageCount images.
func TotalPages(imageCount int, guardPage bool) int {
	total := int(math.Ceil(float64(imageCount) / 2))
	if guardPage {
		total += 2
	}
	return total
}

// TotalThickness sums the leaf thicknesses.
func TotalThickness(pages []Page) float32 {
	var sum float32
	for _, p := range pages {
		sum += p.Thickness
	}
	return sum
}
