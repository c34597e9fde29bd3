// Package viewer runs the interactive window that renders a book and
// turns its pages from the keyboard and mouse.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/flipbook/internal/book"
	"github.com/Faultbox/flipbook/internal/config"
	"github.com/Faultbox/flipbook/internal/engine/camera"
	"github.com/Faultbox/flipbook/internal/engine/debug"
	"github.com/Faultbox/flipbook/internal/engine/input"
	"github.com/Faultbox/flipbook/internal/engine/lighting"
	"github.com/Faultbox/flipbook/internal/engine/renderer"
	"github.com/Faultbox/flipbook/internal/engine/texture"
	"github.com/Faultbox/flipbook/internal/engine/window"
	"github.com/Faultbox/flipbook/internal/logger"
)

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	sun      lighting.Sun
	shots    *debug.ScreenshotCapture

	book     *book.Book
	parts    []Part
	meshes   []*renderer.Mesh
	textures [][]uint32
	uploaded map[*image.NRGBA]uint32
	resolver *Resolver
	final    bool // textures resolved after loading
	dragging bool
}

// New opens the window and uploads the book meshes.
func New(cfg *config.Config, b *book.Book) (*Viewer, error) {
	v := &Viewer{
		cfg:      cfg,
		log:      logger.Named("viewer"),
		book:     b,
		sun:      lighting.DefaultSun(),
		uploaded: make(map[*image.NRGBA]uint32),
		resolver: NewResolver(),
	}

	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Render.Width),
		zap.Int("height", cfg.Render.Height),
		zap.Int("leaves", len(b.Leaves())))

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      "Flipbook",
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		Fullscreen: cfg.Render.Fullscreen,
		VSync:      cfg.Render.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	w, h := v.window.GetDrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		Background: texture.MustParseColor("#1e1e24"),
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.camera = camera.NewOrbitCamera()
	d := b.Dimensions()
	v.camera.FitToBounds(-d.CoverTotalWidth/2, -d.CoverHeight/2, 0, d.CoverTotalWidth/2, d.CoverHeight/2, 0)

	format, err := cfg.ExportFormat()
	if err != nil {
		format = texture.FormatPNG
	}
	v.shots = debug.NewScreenshotCapture(cfg.Export.Dir, "flipbook", format)

	v.parts = Parts(b)
	v.meshes = make([]*renderer.Mesh, len(v.parts))
	v.textures = make([][]uint32, len(v.parts))
	for i, p := range v.parts {
		v.meshes[i] = v.renderer.UploadMesh(p.Mesh, p.Skinned)
	}
	v.bindTextures()

	v.log.Info("viewer initialized", zap.Int("parts", len(v.parts)))
	return v, nil
}

// Run starts the main loop and returns when the window closes or ctx is
// cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		if err := ctx.Err(); err != nil {
			return nil
		}

		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		// 2. Update book state
		v.book.Tick(dt)
		if !v.final {
			v.bindTextures()
		}

		// 3. Render
		v.render()

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.Int("page", v.book.CurrentPage()),
				zap.Bool("stepping", v.book.State().Stepping))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := v.window.GetDrawableSize()
			v.renderer.Resize(w, h)
		case input.EventMouseDown:
			v.dragging = event.Button == sdl.BUTTON_LEFT
		case input.EventMouseUp:
			v.dragging = false
		case input.EventMouseMove:
			if v.dragging {
				v.camera.HandleDrag(float32(event.MouseX), float32(event.MouseY))
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(event.WheelY)
		case input.EventKeyDown:
			v.handleKey(event.Key)
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_RIGHT, sdl.SCANCODE_SPACE:
		v.book.NextPage()
	case sdl.SCANCODE_LEFT, sdl.SCANCODE_BACKSPACE:
		v.book.PrevPage()
	case sdl.SCANCODE_HOME:
		v.book.SetPage(0)
	case sdl.SCANCODE_END:
		v.book.SetPage(v.book.TotalPages() + 1)
	case sdl.SCANCODE_P:
		plate := v.book.Graph().Node(v.book.Rig().Plate.Node)
		plate.Visible = !plate.Visible
		v.log.Info("spine plate toggled", zap.Bool("visible", plate.Visible))
	case sdl.SCANCODE_F12:
		v.screenshot()
	case sdl.SCANCODE_E:
		v.exportSlices()
	}
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	name, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

func (v *Viewer) exportSlices() {
	cov, err := v.book.Cover()
	if err != nil {
		v.log.Warn("cover not loaded yet", zap.Error(err))
		return
	}
	format, err := v.cfg.ExportFormat()
	if err != nil {
		v.log.Error("export format", zap.Error(err))
		return
	}
	paths, err := texture.Export(v.cfg.Export.Dir, cov, format)
	if err != nil {
		v.log.Error("slice export failed", zap.Error(err))
		return
	}
	v.log.Info("cover slices exported", zap.Strings("files", paths))
}

// bindTextures uploads the current face textures of every part. It runs
// with flat colors until the book has loaded, then once more for good.
func (v *Viewer) bindTextures() {
	final := true
	for i, p := range v.parts {
		imgs, err := v.resolver.Textures(v.book, p)
		if err != nil {
			if !errors.Is(err, book.ErrNotReady) {
				v.log.Warn("part textures", zap.String("part", p.Name), zap.Error(err))
			}
			final = false
		}
		ids := make([]uint32, len(imgs))
		for f, img := range imgs {
			ids[f] = v.texture(img)
		}
		v.textures[i] = ids
	}
	v.final = final
	if final {
		v.log.Info("book textures bound", zap.Int("textures", len(v.uploaded)))
	}
}

func (v *Viewer) texture(img *image.NRGBA) uint32 {
	if img == nil {
		return 0
	}
	if id, ok := v.uploaded[img]; ok {
		return id
	}
	id := v.renderer.UploadTexture(img)
	v.uploaded[img] = id
	return id
}

func (v *Viewer) render() {
	v.renderer.Begin(v.camera.ViewProjection(v.renderer.Aspect()), v.sun)
	defer v.renderer.End()

	if !v.book.Ready() {
		return
	}
	g := v.book.Graph()
	for i, p := range v.parts {
		if !Visible(g, p.Node) {
			continue
		}
		if p.Skinned {
			v.renderer.UpdatePositions(v.meshes[i], p.Mesh, v.book.Rig().Plate.Deform())
		}
		v.renderer.Draw(v.meshes[i], g.World(p.Node), v.textures[i])
	}
}

// Close releases GPU resources and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		for _, m := range v.meshes {
			v.renderer.DeleteMesh(m)
		}
		for _, id := range v.uploaded {
			v.renderer.DeleteTexture(id)
		}
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
