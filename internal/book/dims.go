// Package book assembles the page chain, the page-turn controller and
// the cover rig into one tickable book.
package book

import (
	"image"
	gomath "math"

	"github.com/Faultbox/flipbook/internal/book/cover"
	"github.com/Faultbox/flipbook/internal/engine/texture"
)

const (
	// MaxTextureSize caps the width the dimensions are measured from and
	// the longest side of uploaded page textures.
	MaxTextureSize = 2048
	// referenceWidth is the page width, in pixels, that gets the base
	// thickness ratio.
	referenceWidth = 8192
	thicknessRatio = 0.035
	marginRatio    = 0.2
)

// DefaultPageSize is used when no page image size is known.
var DefaultPageSize = image.Pt(1024, 1536)

// Inputs are the raster sizes the physical dimensions derive from.
// Zero points mean "absent".
type Inputs struct {
	PageSize   image.Point
	FrontCover image.Point
	BackCover  image.Point
	ImageCount int
}

// Dimensions are the derived physical measurements in scene units.
type Dimensions struct {
	PageWidth     float32
	PageHeight    float32
	PageThickness float32

	SpineWidth float32
	GuardWidth float32

	CoverThickness  float32
	CoverWidth      float32 // one board
	CoverTotalWidth float32 // both boards, both guards and the spine
	CoverHeight     float32
}

// Recompute derives the book dimensions. It is pure: the same inputs
// always give the same result.
func Recompute(in Inputs) Dimensions {
	page := clampSize(in.PageSize)
	if page == (image.Point{}) {
		page = DefaultPageSize
	}

	var d Dimensions
	d.PageWidth = texture.PixelToUnit(page.X)
	d.PageHeight = texture.PixelToUnit(page.Y)

	ref := texture.PixelToUnit(referenceWidth)
	t := thicknessRatio * d.PageWidth / ref
	d.PageThickness = t
	d.SpineWidth = t*float32(gomath.Ceil(float64(max(in.ImageCount, 0))/2)) + t/4
	d.GuardWidth = d.SpineWidth / 2
	d.CoverThickness = 2 * t

	// A lone cover is taken as the whole wrap.
	front, back := clampSize(in.FrontCover), clampSize(in.BackCover)
	var coverW, coverH float32
	if front == (image.Point{}) && back == (image.Point{}) {
		coverW, coverH = 2*d.PageWidth, d.PageHeight
	} else {
		coverW = texture.PixelToUnit(front.X + back.X)
		coverH = texture.PixelToUnit(max(front.Y, back.Y))
	}

	adjusted := coverW + marginRatio*coverW/ref
	aspect := coverH / adjusted
	adjusted += d.SpineWidth

	d.CoverTotalWidth = adjusted
	d.CoverHeight = adjusted * aspect
	d.CoverWidth = (adjusted - 2*d.GuardWidth - d.SpineWidth) / 2
	return d
}

// CoverLayout returns the layout the texture compositor slices against.
func (d Dimensions) CoverLayout() texture.CoverLayout {
	return texture.CoverLayout{
		TotalWidth:  d.CoverTotalWidth,
		TotalHeight: d.CoverHeight,
		CoverWidth:  d.CoverWidth,
		GuardWidth:  d.GuardWidth,
		SpineWidth:  d.SpineWidth,
	}
}

// Rig returns the cover rig measurements.
func (d Dimensions) Rig() cover.Dimensions {
	return cover.Dimensions{
		BoardWidth:     d.CoverWidth,
		Height:         d.CoverHeight,
		BoardThickness: d.CoverThickness,
		GuardWidth:     d.GuardWidth,
		SpineWidth:     d.SpineWidth,
	}
}

// clampSize scales p down so that its width does not exceed
// MaxTextureSize. The height follows the aspect ratio.
func clampSize(p image.Point) image.Point {
	if p.X <= 0 || p.Y <= 0 {
		return image.Point{}
	}
	if p.X <= MaxTextureSize {
		return p
	}
	scale := float64(MaxTextureSize) / float64(p.X)
	return image.Pt(max(1, int(float64(p.X)*scale+0.5)), max(1, int(float64(p.Y)*scale+0.5)))
}
