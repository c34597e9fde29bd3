package book

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	gomath "math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/flipbook/internal/book/cover"
	"github.com/Faultbox/flipbook/internal/book/flipper"
	"github.com/Faultbox/flipbook/internal/book/pages"
	"github.com/Faultbox/flipbook/internal/engine/graph"
	"github.com/Faultbox/flipbook/internal/engine/texture"
	"github.com/Faultbox/flipbook/internal/logger"
	"github.com/Faultbox/flipbook/pkg/math"
)

// ErrNotReady is returned when textures are queried before loading
// finished.
var ErrNotReady = errors.New("book: not ready")

// Default colors of the inside and outside of the cover.
var (
	DefaultInsideColor  = color.NRGBA{R: 0xaf, G: 0xaf, B: 0xaf, A: 0xff}
	DefaultOutsideColor = color.NRGBA{R: 0x5f, G: 0x5f, B: 0x5f, A: 0xff}
)

// DefaultAngle is the tilt of the book toward the viewer, in radians.
const DefaultAngle = 0.65

// Options configure a book.
type Options struct {
	Pages      []string // page image references; empty entries are blank
	FrontCover string
	BackCover  string

	// Preload holds Ready back until every texture is loaded.
	Preload bool

	HasGuardPage   bool
	GuardPageColor *color.NRGBA // nil uses InsideColor
	InsideColor    color.NRGBA
	OutsideColor   color.NRGBA

	TurningSpeed float32
	TotalPages   int // overrides the derived page count when > 0
	Angle        float32
}

// DefaultOptions returns options for an empty book.
func DefaultOptions() Options {
	return Options{
		Preload:      true,
		InsideColor:  DefaultInsideColor,
		OutsideColor: DefaultOutsideColor,
		TurningSpeed: flipper.DefaultTurningSpeed,
		Angle:        DefaultAngle,
	}
}

// Side selects one face of a leaf.
type Side int

const (
	Front Side = iota
	Back
)

type loadResult struct {
	pages map[string]*image.NRGBA
	cover *texture.Cover
	err   error
}

// Book is the assembled rig. All methods except Close must be called
// from one goroutine, normally the render loop.
type Book struct {
	opts Options
	dims Dimensions
	log  *zap.Logger

	g          *graph.Graph
	root       graph.NodeID
	pagesGroup graph.NodeID
	leaves     []pages.Page
	leafNodes  []graph.NodeID
	chain      *pages.Chain
	rotator    *pages.Rotator
	ctrl       *flipper.Controller
	rig        *cover.Rig
	settled    bool

	ready   bool
	loaded  bool
	closed  bool
	results chan loadResult
	cancel  context.CancelFunc
	pageTex map[string]*image.NRGBA
	cover   *texture.Cover
	solid   map[color.NRGBA]*image.NRGBA
}

// New measures the source images, builds the rig and starts loading the
// textures in the background. Structural failures are returned; image
// failures only degrade the affected surfaces.
func New(ctx context.Context, opts Options, loader texture.Loader) (*Book, error) {
	if opts.TurningSpeed <= 0 {
		opts.TurningSpeed = flipper.DefaultTurningSpeed
	}
	b := &Book{
		opts:    opts,
		log:     logger.Named("book"),
		results: make(chan loadResult, 1),
		solid:   make(map[color.NRGBA]*image.NRGBA),
	}

	b.dims = Recompute(Measure(ctx, loader, opts))
	if err := b.build(); err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	go func() {
		b.results <- b.load(loadCtx, loader)
	}()

	b.ready = !opts.Preload
	b.log.Info("book created",
		zap.Int("images", len(opts.Pages)),
		zap.Int("leaves", len(b.leaves)),
		zap.Int("total_pages", b.ctrl.TotalPages()),
		zap.Float32("spine_width", b.dims.SpineWidth),
		zap.Bool("preload", opts.Preload))
	return b, nil
}

func (b *Book) build() error {
	opts := b.opts
	b.g = graph.New()

	b.root = b.g.Add("book", graph.None)
	b.g.Node(b.root).Rotation = math.QuatFromAxisAngle(math.AxisX, -opts.Angle)
	b.pagesGroup = b.g.Add("book.pages", b.root)
	b.g.Node(b.pagesGroup).Rotation = math.QuatFromYaw(-gomath.Pi / 2)

	b.leaves = pages.Build(pages.BuildOptions{
		Images:     opts.Pages,
		Thickness:  b.dims.PageThickness,
		Color:      opts.InsideColor,
		GuardPage:  opts.HasGuardPage,
		GuardColor: opts.GuardPageColor,
	})
	b.chain = pages.BuildChain(b.g, b.pagesGroup, b.leaves)

	b.leafNodes = make([]graph.NodeID, len(b.leaves))
	for i := range b.leaves {
		b.leafNodes[i] = b.g.Add(fmt.Sprintf("page.%d", i), graph.None)
	}
	if err := b.chain.Attach(b.g, b.leafNodes, b.leaves); err != nil {
		return err
	}

	rig, err := cover.NewRig(b.g, b.pagesGroup, b.dims.Rig())
	if err != nil {
		return fmt.Errorf("book: cover rig: %w", err)
	}
	first, last := 0, len(b.leaves)-1
	if err := rig.AttachBoards(b.leafNodes[first], b.leafNodes[last],
		b.leaves[first].Thickness, b.leaves[last].Thickness); err != nil {
		return &pages.ConstructionError{Reason: err.Error()}
	}
	b.rig = rig

	total := opts.TotalPages
	if total <= 0 {
		total = pages.TotalPages(len(opts.Pages), opts.HasGuardPage)
	}
	b.ctrl = flipper.NewController(total, opts.TurningSpeed)
	b.rotator = pages.NewRotator()
	b.g.Node(b.root).Position.X = b.slideTarget()

	b.g.Update()
	b.rig.Solve()
	return nil
}

// sizer is implemented by loaders that can report an image size without
// decoding the whole image.
type sizer interface {
	Size(ctx context.Context, source string) (image.Point, error)
}

// Measure reads the page and cover raster sizes Recompute needs. Sizes
// that cannot be read are left zero.
func Measure(ctx context.Context, loader texture.Loader, opts Options) Inputs {
	in := Inputs{ImageCount: len(opts.Pages)}

	var firstPage string
	for _, p := range opts.Pages {
		if p != "" {
			firstPage = p
			break
		}
	}

	var g errgroup.Group
	size := func(src string, dst *image.Point) {
		if src == "" {
			return
		}
		g.Go(func() error {
			*dst = imageSize(ctx, loader, src)
			return nil
		})
	}
	size(firstPage, &in.PageSize)
	size(opts.FrontCover, &in.FrontCover)
	size(opts.BackCover, &in.BackCover)
	_ = g.Wait()
	return in
}

func imageSize(ctx context.Context, loader texture.Loader, src string) image.Point {
	var (
		p   image.Point
		err error
	)
	if s, ok := loader.(sizer); ok {
		p, err = s.Size(ctx, src)
	} else {
		var img *image.NRGBA
		if img, err = loader.Load(ctx, src); err == nil {
			p = img.Bounds().Size()
		}
	}
	if err != nil {
		logger.Debug("image size unavailable", zap.String("source", src), zap.Error(err))
		return image.Point{}
	}
	return p
}

// load decodes every page image and composes the cover.
func (b *Book) load(ctx context.Context, loader texture.Loader) loadResult {
	res := loadResult{pages: make(map[string]*image.NRGBA)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[string]bool)
	for _, leaf := range b.leaves {
		for _, s := range [...]pages.Surface{leaf.Front, leaf.Back} {
			if s.Kind != pages.SurfaceImage || seen[s.Source] {
				continue
			}
			seen[s.Source] = true
			src := s.Source
			g.Go(func() error {
				img, err := loader.Load(gctx, src)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return err
					}
					b.log.Warn("page image unavailable, using flat color", zap.String("source", src), zap.Error(err))
					return nil
				}
				img = texture.Fit(img, MaxTextureSize)
				mu.Lock()
				res.pages[src] = img
				mu.Unlock()
				return nil
			})
		}
	}

	if b.opts.FrontCover != "" || b.opts.BackCover != "" {
		g.Go(func() error {
			c, err := texture.NewCompositor().Compose(gctx, loader, b.opts.FrontCover, b.opts.BackCover, b.dims.CoverLayout())
			if err != nil {
				return err
			}
			res.cover = c
			return nil
		})
	}

	res.err = g.Wait()
	return res
}

// Tick advances the book by dt: collects finished loads, steps the
// controller, turns the pages, slides the book and solves the spine.
func (b *Book) Tick(dt time.Duration) {
	b.drain()

	b.ctrl.Update(dt)
	b.settled = b.rotator.Update(b.g, b.chain, b.ctrl)
	b.slide()

	b.g.Update()
	b.rig.Solve()
}

func (b *Book) drain() {
	if b.loaded {
		return
	}
	select {
	case res := <-b.results:
		b.loaded = true
		if b.closed {
			return
		}
		if res.err != nil {
			b.log.Warn("texture loading stopped", zap.Error(res.err))
		}
		b.pageTex = res.pages
		b.cover = res.cover
		b.ready = true
		b.log.Debug("textures loaded",
			zap.Int("pages", len(res.pages)),
			zap.Bool("cover", res.cover != nil))
	default:
	}
}

// slide moves the book sideways so the visible part stays centered: a
// closed book shifts by a quarter of its cover width, an open one by half
// its spine.
func (b *Book) slide() {
	n := b.g.Node(b.root)
	n.Position.X += (b.slideTarget() - n.Position.X) * b.ctrl.TurningSpeed()
}

func (b *Book) slideTarget() float32 {
	c, total := b.ctrl.CurrentPage(), b.ctrl.TotalPages()
	if c >= 1 && c < total+1 {
		return b.dims.SpineWidth / 2
	}
	if c == 0 {
		return -b.dims.CoverTotalWidth / 4
	}
	return b.dims.CoverTotalWidth / 4
}

// Close stops background loading. Results that arrive afterwards are
// dropped.
func (b *Book) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.cancel()
}

// NextPage turns one page forward.
func (b *Book) NextPage() { b.ctrl.NextPage() }

// PrevPage turns one page back.
func (b *Book) PrevPage() { b.ctrl.PrevPage() }

// SetPage steps toward page, one page at a time.
func (b *Book) SetPage(page int) { b.ctrl.SetPage(page) }

func (b *Book) CurrentPage() int { return b.ctrl.CurrentPage() }

func (b *Book) TargetPage() int { return b.ctrl.TargetPage() }

func (b *Book) TotalPages() int { return b.ctrl.TotalPages() }

// Ready reports whether the book may be shown. With Preload it waits for
// the textures.
func (b *Book) Ready() bool { return b.ready }

// Settled reports whether every page joint reached its target last tick.
func (b *Book) Settled() bool { return b.settled }

func (b *Book) State() flipper.State { return b.ctrl.State() }

// SetTurningSpeed changes the per-tick interpolation fraction.
func (b *Book) SetTurningSpeed(speed float32) { b.ctrl.SetTurningSpeed(speed) }

// Graph returns the transform graph; Root is the node to mount.
func (b *Book) Graph() *graph.Graph { return b.g }

func (b *Book) Root() graph.NodeID { return b.root }

func (b *Book) Dimensions() Dimensions { return b.dims }

func (b *Book) Leaves() []pages.Page { return b.leaves }

func (b *Book) Chain() *pages.Chain { return b.chain }

func (b *Book) Rig() *cover.Rig { return b.rig }

func (b *Book) Options() Options { return b.opts }

// LeafNode returns the graph node carrying leaf i.
func (b *Book) LeafNode(i int) graph.NodeID {
	return b.leafNodes[i]
}

// PageTexture returns the texture of one side of leaf i. Color sides and
// images that failed to load get a 2x2 texture of the leaf color.
func (b *Book) PageTexture(i int, side Side) (*image.NRGBA, error) {
	if !b.loaded {
		return nil, ErrNotReady
	}
	if i < 0 || i >= len(b.leaves) {
		return nil, fmt.Errorf("book: leaf %d out of range [0,%d)", i, len(b.leaves))
	}
	leaf := b.leaves[i]
	s := leaf.Front
	if side == Back {
		s = leaf.Back
	}
	if s.Kind == pages.SurfaceImage {
		if img, ok := b.pageTex[s.Source]; ok {
			return img, nil
		}
		return b.solidTexture(leaf.Color), nil
	}
	return b.solidTexture(s.Color), nil
}

func (b *Book) solidTexture(c color.NRGBA) *image.NRGBA {
	if img, ok := b.solid[c]; ok {
		return img
	}
	img := texture.Solid(c, 2)
	b.solid[c] = img
	return img
}

// Cover returns the sliced cover textures, or nil when the book has no
// usable cover image and the boards use OutsideColor.
func (b *Book) Cover() (*texture.Cover, error) {
	if !b.loaded {
		return nil, ErrNotReady
	}
	return b.cover, nil
}
