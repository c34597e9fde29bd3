package texture

import (
	"context"
	"errors"
	"image"
	"math"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/flipbook/internal/logger"
)

// SliceName identifies one region of the cover wrap.
type SliceName string

const (
	SliceBack       SliceName = "back"
	SliceBackGuard  SliceName = "backGuard"
	SliceSpine      SliceName = "spine"
	SliceFrontGuard SliceName = "frontGuard"
	SliceFront      SliceName = "front"
)

// SliceOrder is the left-to-right order of the regions in the merged
// raster. The spine sits in the middle with a guard on either side.
var SliceOrder = [...]SliceName{SliceBack, SliceBackGuard, SliceSpine, SliceFrontGuard, SliceFront}

// CoverLayout holds the physical cover dimensions in scene units.
type CoverLayout struct {
	TotalWidth  float32
	TotalHeight float32
	CoverWidth  float32 // one board, without guard or spine
	GuardWidth  float32
	SpineWidth  float32
}

func (l CoverLayout) widths() [len(SliceOrder)]float32 {
	return [...]float32{l.CoverWidth, l.GuardWidth, l.SpineWidth, l.GuardWidth, l.CoverWidth}
}

// Slice is one region of the merged cover raster.
type Slice struct {
	Name  SliceName
	Order int
	// Width is the scaled pixel width before rounding to Rect.
	Width float64
	Rect  image.Rectangle
	Image *image.NRGBA
}

// Cover is the compositor output.
type Cover struct {
	Merged *image.NRGBA
	Factor float64
	Slices []Slice
}

// Slice returns the region by name, or nil.
func (c *Cover) Slice(name SliceName) *Slice {
	if c == nil {
		return nil
	}
	for i := range c.Slices {
		if c.Slices[i].Name == name {
			return &c.Slices[i]
		}
	}
	return nil
}

// Compositor merges the two cover images and cuts the result into the
// five physically proportioned regions.
type Compositor struct {
	log *zap.Logger
}

// NewCompositor creates a compositor.
func NewCompositor() *Compositor {
	return &Compositor{log: logger.Named("compositor")}
}

// Compose loads front and back (either may be empty), merges them and
// slices the result. It returns (nil, nil) when no image is usable; decode
// failures degrade the affected cover to absent. Only context cancellation
// is returned as an error.
func (c *Compositor) Compose(ctx context.Context, loader Loader, front, back string, layout CoverLayout) (*Cover, error) {
	var frontImg, backImg *image.NRGBA

	g, gctx := errgroup.WithContext(ctx)
	load := func(src string, dst **image.NRGBA) {
		if src == "" {
			return
		}
		g.Go(func() error {
			img, err := loader.Load(gctx, src)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				c.log.Warn("cover image unavailable, using flat color", zap.String("source", src), zap.Error(err))
				return nil
			}
			*dst = img
			return nil
		})
	}
	load(front, &frontImg)
	load(back, &backImg)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := c.Merge(frontImg, backImg, UnitToPixel(layout.TotalWidth), UnitToPixel(layout.TotalHeight))
	if merged == nil {
		return nil, nil
	}
	return c.Slice(ctx, merged, layout)
}

// Merge draws the covers into a width x height buffer laid out like a
// flat cover wrap: the back cover on the left half and the front cover on
// the right half. A single image fills the buffer alone. Each image is
// scaled to fit its area and centered. Returns nil when both are nil.
func (c *Compositor) Merge(front, back *image.NRGBA, width, height int) *image.NRGBA {
	if front == nil && back == nil {
		return nil
	}
	width, height = max(width, 1), max(height, 1)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	if front == nil || back == nil {
		only := front
		if only == nil {
			only = back
		}
		DrawContained(dst, dst.Bounds(), only)
		return dst
	}

	half := width / 2
	DrawContained(dst, image.Rect(0, 0, half, height), back)
	DrawContained(dst, image.Rect(half, 0, width, height), front)
	return dst
}

// Slice cuts merged into the five regions. Widths are the nominal pixel
// widths from layout scaled by merged width / nominal sum; the rounded
// rectangles tile the merged raster exactly. Regions are copied
// concurrently and joined before returning.
func (c *Compositor) Slice(ctx context.Context, merged *image.NRGBA, layout CoverLayout) (*Cover, error) {
	nominal := layout.widths()
	var sum float64
	for _, w := range nominal {
		sum += float64(UnitToPixel(w))
	}

	mw := merged.Bounds().Dx()
	h := merged.Bounds().Dy()
	factor := 1.0
	if sum > 0 {
		factor = float64(mw) / sum
	}

	out := &Cover{Merged: merged, Factor: factor, Slices: make([]Slice, len(SliceOrder))}

	g, gctx := errgroup.WithContext(ctx)
	offset := 0.0
	for i, name := range SliceOrder {
		w := float64(UnitToPixel(nominal[i])) * factor
		x0 := int(math.Round(offset))
		offset += w
		x1 := int(math.Round(offset))
		if i == len(SliceOrder)-1 {
			x1 = mw
		}

		s := &out.Slices[i]
		*s = Slice{Name: name, Order: i, Width: w, Rect: image.Rect(x0, 0, x1, h)}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if s.Rect.Empty() {
				c.log.Warn("empty cover slice", zap.String("slice", string(s.Name)))
				return nil
			}
			s.Image = crop(merged, s.Rect)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Debug("cover sliced",
		zap.Int("width", mw),
		zap.Int("height", h),
		zap.Float64("factor", factor))
	return out, nil
}

func crop(src *image.NRGBA, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}
