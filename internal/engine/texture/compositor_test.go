package texture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLoader map[string]*image.NRGBA

func (m mapLoader) Load(_ context.Context, src string) (*image.NRGBA, error) {
	if img, ok := m[src]; ok {
		return img, nil
	}
	return nil, &DecodeError{Source: src, Err: errors.New("not found")}
}

func testLayout() CoverLayout {
	return CoverLayout{
		TotalWidth:  2.5,
		TotalHeight: 1.5,
		CoverWidth:  1,
		GuardWidth:  0.125,
		SpineWidth:  0.25,
	}
}

func TestMergeBothHalves(t *testing.T) {
	c := NewCompositor()
	merged := c.Merge(filled(red, 100, 100), filled(blue, 100, 100), 400, 200)
	require.NotNil(t, merged)
	assert.Equal(t, image.Rect(0, 0, 400, 200), merged.Bounds())

	assert.Equal(t, blue, merged.NRGBAAt(100, 100), "back cover on the left")
	assert.Equal(t, red, merged.NRGBAAt(300, 100), "front cover on the right")
	// 100x100 letterboxed into 200x200 halves leaves nothing transparent.
	assert.Equal(t, uint8(0xff), merged.NRGBAAt(0, 0).A)
}

func TestMergeSingleFillsAlone(t *testing.T) {
	c := NewCompositor()
	merged := c.Merge(nil, filled(blue, 200, 100), 400, 200)
	require.NotNil(t, merged)
	assert.Equal(t, blue, merged.NRGBAAt(5, 5))
	assert.Equal(t, blue, merged.NRGBAAt(395, 195))

	letterbox := c.Merge(filled(red, 100, 100), nil, 400, 200)
	assert.Equal(t, color.NRGBA{}, letterbox.NRGBAAt(10, 100))
	assert.Equal(t, red, letterbox.NRGBAAt(200, 100))

	assert.Nil(t, c.Merge(nil, nil, 400, 200))
}

func TestSliceWidthsTileMergedRaster(t *testing.T) {
	c := NewCompositor()
	layout := testLayout()

	for _, width := range []int{1280, 1000, 1333} {
		merged := image.NewNRGBA(image.Rect(0, 0, width, 300))
		cover, err := c.Slice(context.Background(), merged, layout)
		require.NoError(t, err)
		require.Len(t, cover.Slices, 5)

		var sum float64
		x := 0
		for i, s := range cover.Slices {
			assert.Equal(t, SliceOrder[i], s.Name)
			assert.Equal(t, i, s.Order)
			assert.Equal(t, x, s.Rect.Min.X, "slices are contiguous")
			require.NotNil(t, s.Image)
			assert.Equal(t, s.Rect.Dx(), s.Image.Bounds().Dx())
			assert.Equal(t, 300, s.Image.Bounds().Dy())
			x = s.Rect.Max.X
			sum += s.Width
		}
		assert.Equal(t, width, x)
		assert.InEpsilon(t, float64(width), sum, 1e-3)
		assert.InDelta(t, float64(width)/1280, cover.Factor, 1e-9)
	}
}

func TestSliceSpineCentered(t *testing.T) {
	c := NewCompositor()
	merged := image.NewNRGBA(image.Rect(0, 0, 1280, 10))
	cover, err := c.Slice(context.Background(), merged, testLayout())
	require.NoError(t, err)

	spine := cover.Slice(SliceSpine)
	require.NotNil(t, spine)
	assert.Equal(t, image.Rect(576, 0, 704, 10), spine.Rect)
	assert.Equal(t, image.Rect(512, 0, 576, 10), cover.Slice(SliceBackGuard).Rect)
	assert.Equal(t, image.Rect(704, 0, 768, 10), cover.Slice(SliceFrontGuard).Rect)
	assert.Nil(t, cover.Slice("inside"))
}

func TestSliceCopiesPixels(t *testing.T) {
	c := NewCompositor()
	merged := c.Merge(filled(red, 10, 10), filled(blue, 10, 10), 1280, 640)
	cover, err := c.Slice(context.Background(), merged, testLayout())
	require.NoError(t, err)

	assert.Equal(t, blue, cover.Slice(SliceBack).Image.NRGBAAt(256, 320))
	assert.Equal(t, red, cover.Slice(SliceFront).Image.NRGBAAt(256, 320))
}

func TestComposeDegradesMissingCovers(t *testing.T) {
	c := NewCompositor()
	loader := mapLoader{"front.png": filled(red, 50, 30)}

	cover, err := c.Compose(context.Background(), loader, "front.png", "broken.png", testLayout())
	require.NoError(t, err)
	require.NotNil(t, cover)
	assert.Equal(t, image.Rect(0, 0, 1280, 768), cover.Merged.Bounds())
	assert.Equal(t, red, cover.Merged.NRGBAAt(640, 384))

	cover, err = c.Compose(context.Background(), loader, "", "broken.png", testLayout())
	require.NoError(t, err)
	assert.Nil(t, cover)
}

func TestComposeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCompositor()
	merged := image.NewNRGBA(image.Rect(0, 0, 100, 10))
	_, err := c.Slice(ctx, merged, testLayout())
	assert.ErrorIs(t, err, context.Canceled)
}
