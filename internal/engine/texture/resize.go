package texture

import (
	"image"

	"golang.org/x/image/draw"
)

// PixelsPerUnit converts between raster pixels and scene units.
const PixelsPerUnit = 512

// UnitToPixel converts a scene length to a pixel count, rounding to nearest.
func UnitToPixel(u float32) int {
	return int(u*PixelsPerUnit + 0.5)
}

// PixelToUnit converts a pixel count to a scene length.
func PixelToUnit(px int) float32 {
	return float32(px) / PixelsPerUnit
}

// Fit downscales src so that neither side exceeds maxDim, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Fit(src *image.NRGBA, maxDim int) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return src
	}
	scale := float64(maxDim) / float64(max(w, h))
	dw := max(1, int(float64(w)*scale+0.5))
	dh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ContainRect returns the largest rectangle with src's aspect ratio that
// fits inside area, centered in it.
func ContainRect(src image.Rectangle, area image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	aw, ah := float64(area.Dx()), float64(area.Dy())
	if sw == 0 || sh == 0 || aw == 0 || ah == 0 {
		return image.Rectangle{}
	}
	scale := min(aw/sw, ah/sh)
	dw := int(sw*scale + 0.5)
	dh := int(sh*scale + 0.5)
	x := area.Min.X + (area.Dx()-dw)/2
	y := area.Min.Y + (area.Dy()-dh)/2
	return image.Rect(x, y, x+dw, y+dh)
}

// DrawContained scales src into area keeping its aspect ratio, centered,
// leaving the letterbox untouched.
func DrawContained(dst draw.Image, area image.Rectangle, src image.Image) {
	r := ContainRect(src.Bounds(), area)
	if r.Empty() {
		return
	}
	draw.CatmullRom.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
}
