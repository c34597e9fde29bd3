package book

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/flipbook/internal/engine/texture"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

func pngBytes(t *testing.T, c color.NRGBA, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fixture returns a filesystem with n page images and both covers.
func fixture(t *testing.T, n int) (fstest.MapFS, []string) {
	t.Helper()
	fsys := fstest.MapFS{
		"cover/front.png": {Data: pngBytes(t, red, 400, 600)},
		"cover/back.png":  {Data: pngBytes(t, blue, 400, 600)},
	}
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("pages/p%02d.png", i)
		fsys[names[i]] = &fstest.MapFile{Data: pngBytes(t, blue, 16, 24)}
	}
	return fsys, names
}

// gateLoader blocks Load until gate is closed. Size is never blocked.
type gateLoader struct {
	inner *texture.SourceLoader
	gate  chan struct{}
}

func (l *gateLoader) Load(ctx context.Context, src string) (*image.NRGBA, error) {
	select {
	case <-l.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return l.inner.Load(ctx, src)
}

func (l *gateLoader) Size(ctx context.Context, src string) (image.Point, error) {
	return l.inner.Size(ctx, src)
}

func waitLoaded(t *testing.T, b *Book) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !b.loaded {
		require.True(t, time.Now().Before(deadline), "textures never arrived")
		b.Tick(0)
		time.Sleep(time.Millisecond)
	}
}

func newBook(t *testing.T, opts Options, loader texture.Loader) *Book {
	t.Helper()
	b, err := New(context.Background(), opts, loader)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func TestEighteenImages(t *testing.T) {
	fsys, names := fixture(t, 18)
	opts := DefaultOptions()
	opts.Pages = names
	b := newBook(t, opts, texture.NewSourceLoader(fsys))

	assert.Equal(t, 9, b.TotalPages())
	assert.Len(t, b.Leaves(), 10)
	assert.Equal(t, 11, b.Chain().Len())
	assert.Equal(t, 0, b.CurrentPage())

	for i := 0; i < 10; i++ {
		b.NextPage()
		b.Tick(time.Second)
	}
	assert.Equal(t, 10, b.CurrentPage())
	b.NextPage()
	b.Tick(time.Second)
	assert.Equal(t, 10, b.CurrentPage())

	b.SetPage(3)
	for i := 0; i < 10; i++ {
		b.Tick(time.Second)
	}
	assert.Equal(t, 3, b.CurrentPage())
	assert.Equal(t, 3, b.State().CurrentPage)
}

func TestGuardPagesAndOverride(t *testing.T) {
	fsys, names := fixture(t, 4)
	opts := DefaultOptions()
	opts.Pages = names
	opts.HasGuardPage = true
	b := newBook(t, opts, texture.NewSourceLoader(fsys))

	assert.Equal(t, 4, b.TotalPages())
	require.Len(t, b.Leaves(), 5)
	assert.True(t, b.Leaves()[0].Guard)

	opts.TotalPages = 12
	o := newBook(t, opts, texture.NewSourceLoader(fsys))
	assert.Equal(t, 12, o.TotalPages())
	assert.Len(t, o.Leaves(), 5, "override does not add leaves")
}

func TestPreloadGatesReady(t *testing.T) {
	fsys, names := fixture(t, 2)
	loader := &gateLoader{inner: texture.NewSourceLoader(fsys), gate: make(chan struct{})}
	opts := DefaultOptions()
	opts.Pages = names
	opts.FrontCover = "cover/front.png"
	b := newBook(t, opts, loader)

	b.Tick(16 * time.Millisecond)
	assert.False(t, b.Ready())
	_, err := b.PageTexture(0, Back)
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = b.Cover()
	assert.ErrorIs(t, err, ErrNotReady)

	close(loader.gate)
	waitLoaded(t, b)
	assert.True(t, b.Ready())

	img, err := b.PageTexture(0, Back)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 24), img.Bounds())
}

func TestWithoutPreloadReadyAtOnce(t *testing.T) {
	fsys, names := fixture(t, 2)
	loader := &gateLoader{inner: texture.NewSourceLoader(fsys), gate: make(chan struct{})}
	opts := DefaultOptions()
	opts.Pages = names
	opts.Preload = false
	b := newBook(t, opts, loader)

	assert.True(t, b.Ready())
	_, err := b.PageTexture(0, Back)
	assert.ErrorIs(t, err, ErrNotReady)
	close(loader.gate)
	waitLoaded(t, b)
}

func TestPageTexturesFallBackToColor(t *testing.T) {
	fsys, names := fixture(t, 3)
	names[1] = "pages/missing.png"
	opts := DefaultOptions()
	opts.Pages = names
	b := newBook(t, opts, texture.NewSourceLoader(fsys))
	waitLoaded(t, b)
	assert.True(t, b.Ready(), "decode failures do not block readiness")

	front, err := b.PageTexture(0, Front)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), front.Bounds())
	assert.Equal(t, DefaultInsideColor, front.NRGBAAt(1, 1))

	missing, err := b.PageTexture(1, Front)
	require.NoError(t, err)
	assert.Equal(t, DefaultInsideColor, missing.NRGBAAt(0, 0))
	assert.Same(t, front, missing, "flat textures are shared per color")

	loaded, err := b.PageTexture(1, Back)
	require.NoError(t, err)
	assert.Equal(t, blue, loaded.NRGBAAt(0, 0))

	_, err = b.PageTexture(9, Front)
	assert.Error(t, err)

	c, err := b.Cover()
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCoverSlices(t *testing.T) {
	fsys, names := fixture(t, 6)
	// Pages wide enough to give the spine and guards a few pixels.
	fsys[names[0]] = &fstest.MapFile{Data: pngBytes(t, blue, 512, 768)}
	opts := DefaultOptions()
	opts.Pages = names
	opts.FrontCover = "cover/front.png"
	opts.BackCover = "cover/back.png"
	b := newBook(t, opts, texture.NewSourceLoader(fsys))
	waitLoaded(t, b)

	c, err := b.Cover()
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Len(t, c.Slices, len(texture.SliceOrder))
	assert.InDelta(t, 1, c.Factor, 0.01)
	assert.Equal(t, texture.UnitToPixel(b.Dimensions().CoverTotalWidth), c.Merged.Bounds().Dx())
	for _, s := range c.Slices {
		assert.NotNil(t, s.Image, "slice %s", s.Name)
	}
	front := c.Slice(texture.SliceFront)
	assert.Equal(t, red, front.Image.NRGBAAt(front.Rect.Dx()/2, c.Merged.Bounds().Dy()/2))
}

func TestLoneCoverFillsWrap(t *testing.T) {
	fsys, names := fixture(t, 4)
	opts := DefaultOptions()
	opts.Pages = names
	opts.FrontCover = "cover/front.png"
	b := newBook(t, opts, texture.NewSourceLoader(fsys))
	waitLoaded(t, b)

	c, err := b.Cover()
	require.NoError(t, err)
	require.NotNil(t, c)
	w, h := c.Merged.Bounds().Dx(), c.Merged.Bounds().Dy()
	assert.Equal(t, red, c.Merged.NRGBAAt(w/20, h/2))
	assert.Equal(t, red, c.Merged.NRGBAAt(w-w/20, h/2))
	assert.Equal(t, red, c.Merged.NRGBAAt(w/2, h/2))
}

func TestCloseDropsLateResults(t *testing.T) {
	fsys, names := fixture(t, 2)
	loader := &gateLoader{inner: texture.NewSourceLoader(fsys), gate: make(chan struct{})}
	opts := DefaultOptions()
	opts.Pages = names
	b := newBook(t, opts, loader)

	b.Close()
	b.Close()
	waitLoaded(t, b)
	assert.False(t, b.Ready())
	_, err := b.PageTexture(0, Back)
	require.NoError(t, err, "lookups after teardown fall back to flat color")
}

func TestBookSlides(t *testing.T) {
	fsys, names := fixture(t, 4)
	opts := DefaultOptions()
	opts.Pages = names
	opts.TurningSpeed = 0.5
	b := newBook(t, opts, texture.NewSourceLoader(fsys))
	d := b.Dimensions()
	assert.InDelta(t, -d.CoverTotalWidth/4, b.Graph().Node(b.Root()).Position.X, 1e-6, "starts closed on the front")

	b.Tick(16 * time.Millisecond)
	assert.InDelta(t, -d.CoverTotalWidth/4, b.Graph().Node(b.Root()).Position.X, 1e-6)

	for i := 0; i < 100; i++ {
		b.Tick(16 * time.Millisecond)
	}
	assert.InDelta(t, -d.CoverTotalWidth/4, b.Graph().Node(b.Root()).Position.X, 1e-4)

	b.SetPage(1)
	for i := 0; i < 100; i++ {
		b.Tick(16 * time.Millisecond)
	}
	assert.InDelta(t, d.SpineWidth/2, b.Graph().Node(b.Root()).Position.X, 1e-4)

	b.SetPage(b.TotalPages() + 1)
	for i := 0; i < 200; i++ {
		b.Tick(50 * time.Millisecond)
	}
	assert.Equal(t, b.TotalPages()+1, b.CurrentPage())
	assert.InDelta(t, d.CoverTotalWidth/4, b.Graph().Node(b.Root()).Position.X, 1e-4)
	assert.True(t, b.Settled())
}

func TestSpineStaysFinite(t *testing.T) {
	fsys, names := fixture(t, 8)
	opts := DefaultOptions()
	opts.Pages = names
	opts.TurningSpeed = 0.2
	b := newBook(t, opts, texture.NewSourceLoader(fsys))

	for page := 0; page <= b.TotalPages()+1; page++ {
		b.SetPage(page)
		for i := 0; i < 30; i++ {
			b.Tick(50 * time.Millisecond)
			sol := b.Rig().Last()
			require.False(t, sol.Position.IsNaN(), "page %d", page)
			require.GreaterOrEqual(t, sol.Offset, 0.0)
		}
	}
	assert.Equal(t, len(b.Rig().Plate.Mesh.Vertices), len(b.Rig().Plate.Deform()))
}

func TestLeafNodesRideTheChain(t *testing.T) {
	fsys, names := fixture(t, 4)
	opts := DefaultOptions()
	opts.Pages = names
	b := newBook(t, opts, texture.NewSourceLoader(fsys))

	for i := range b.Leaves() {
		joint, err := b.Chain().JointFor(i)
		require.NoError(t, err)
		assert.Equal(t, joint, b.Graph().Node(b.LeafNode(i)).Parent)
	}
	assert.Equal(t, b.Chain().Root(), b.Graph().Node(b.LeafNode(len(b.Leaves())-1)).Parent)
}
