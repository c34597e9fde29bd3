package book

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeWithoutCovers(t *testing.T) {
	d := Recompute(Inputs{PageSize: image.Pt(1024, 1536), ImageCount: 18})

	assert.InDelta(t, 2, d.PageWidth, 1e-6)
	assert.InDelta(t, 3, d.PageHeight, 1e-6)

	th := float32(0.035 * 2 / 16)
	assert.InDelta(t, th, d.PageThickness, 1e-7)
	assert.InDelta(t, th*9+th/4, d.SpineWidth, 1e-6)
	assert.InDelta(t, d.SpineWidth/2, d.GuardWidth, 1e-7)
	assert.InDelta(t, 2*th, d.CoverThickness, 1e-7)

	// Without covers the wrap is two pages wide plus margin and spine.
	assert.InDelta(t, 4.05+d.SpineWidth, d.CoverTotalWidth, 1e-5)
	assert.InDelta(t, d.CoverTotalWidth*3/4.05, d.CoverHeight, 1e-5)
	assert.InDelta(t, 2.025-d.GuardWidth, d.CoverWidth, 1e-5)
}

func TestRecomputeClampsOversizeImages(t *testing.T) {
	d := Recompute(Inputs{PageSize: image.Pt(4096, 2048), ImageCount: 2})
	assert.InDelta(t, 4, d.PageWidth, 1e-6)
	assert.InDelta(t, 2, d.PageHeight, 1e-6)

	big := Recompute(Inputs{PageSize: image.Pt(1024, 1536), FrontCover: image.Pt(8000, 12000), BackCover: image.Pt(8000, 12000)})
	small := Recompute(Inputs{PageSize: image.Pt(1024, 1536), FrontCover: image.Pt(2048, 3072), BackCover: image.Pt(2048, 3072)})
	assert.InDelta(t, small.CoverTotalWidth, big.CoverTotalWidth, 1e-5)
}

func TestRecomputeClampsWidthOnly(t *testing.T) {
	tall := Recompute(Inputs{PageSize: image.Pt(1536, 3072), ImageCount: 2})
	assert.InDelta(t, 3, tall.PageWidth, 1e-6)
	assert.InDelta(t, 6, tall.PageHeight, 1e-6)

	wide := Recompute(Inputs{PageSize: image.Pt(3072, 1536), ImageCount: 2})
	assert.InDelta(t, 4, wide.PageWidth, 1e-6)
	assert.InDelta(t, 2, wide.PageHeight, 1e-6)
	assert.Greater(t, wide.PageThickness, tall.PageThickness)
}

func TestRecomputeLoneCoverIsWholeWrap(t *testing.T) {
	front := Recompute(Inputs{PageSize: image.Pt(512, 512), FrontCover: image.Pt(2048, 1024)})
	back := Recompute(Inputs{PageSize: image.Pt(512, 512), BackCover: image.Pt(2048, 1024)})
	assert.Equal(t, front, back)

	// The 2048x1024 wrap is four units wide and two high.
	assert.InDelta(t, 4+0.2*4/16+front.SpineWidth, front.CoverTotalWidth, 1e-5)
	assert.InDelta(t, front.CoverTotalWidth*2/(4+0.2*4/16), front.CoverHeight, 1e-5)

	both := Recompute(Inputs{PageSize: image.Pt(512, 512), FrontCover: image.Pt(1024, 1024), BackCover: image.Pt(1024, 1024)})
	assert.InDelta(t, both.CoverTotalWidth, front.CoverTotalWidth, 1e-5)
}

func TestRecomputeDefaultsAndPurity(t *testing.T) {
	in := Inputs{ImageCount: 3}
	d := Recompute(in)
	assert.Equal(t, d, Recompute(in))
	assert.InDelta(t, 2, d.PageWidth, 1e-6)
	assert.Positive(t, d.SpineWidth)

	empty := Recompute(Inputs{ImageCount: -4})
	assert.InDelta(t, empty.PageThickness/4, empty.SpineWidth, 1e-7)
}

func TestCoverLayoutTilesTotalWidth(t *testing.T) {
	d := Recompute(Inputs{PageSize: image.Pt(1000, 1400), FrontCover: image.Pt(1100, 1500), BackCover: image.Pt(1000, 1400), ImageCount: 40})
	l := d.CoverLayout()
	sum := 2*l.CoverWidth + 2*l.GuardWidth + l.SpineWidth
	assert.InDelta(t, l.TotalWidth, sum, 1e-5)

	r := d.Rig()
	assert.Equal(t, d.CoverWidth, r.BoardWidth)
	assert.Equal(t, d.CoverThickness, r.BoardThickness)
}
