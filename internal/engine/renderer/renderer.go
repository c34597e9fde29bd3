// Package renderer draws textured meshes with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/flipbook/internal/engine/lighting"
	"github.com/Faultbox/flipbook/internal/engine/shader"
	"github.com/Faultbox/flipbook/internal/engine/texture"
	"github.com/Faultbox/flipbook/internal/logger"
	"github.com/Faultbox/flipbook/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background color.NRGBA
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	program *shader.Program

	viewProj math.Mat4
	fallback uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg, log: logger.Named("renderer"), viewProj: math.Identity()}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	bg := cfg.Background
	gl.ClearColor(float32(bg.R)/255, float32(bg.G)/255, float32(bg.B)/255, 1)

	program, err := shader.New(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.program = program
	shader.MustGetUniform(program.ID, "uMVP")

	r.fallback = r.UploadTexture(texture.Solid(color.NRGBA{R: 0xff, B: 0xff, A: 0xff}, 2))
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.DeleteTexture(r.fallback)
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin clears the frame and sets the camera and light for every Draw
// until the next Begin.
func (r *Renderer) Begin(viewProj math.Mat4, sun lighting.Sun) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	r.viewProj = viewProj

	p := r.program
	p.Use()
	gl.Uniform3f(p.Uniform("uLightDir"), sun.Direction.X, sun.Direction.Y, sun.Direction.Z)
	gl.Uniform3f(p.Uniform("uAmbient"), sun.Ambient[0], sun.Ambient[1], sun.Ambient[2])
	gl.Uniform3f(p.Uniform("uDiffuse"), sun.Diffuse[0], sun.Diffuse[1], sun.Diffuse[2])
	gl.Uniform1i(p.Uniform("uTexture"), 0)
	gl.ActiveTexture(gl.TEXTURE0)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
}

// Draw renders m with the given world matrix. textures is indexed by
// group material; missing or zero entries use the fallback texture.
func (r *Renderer) Draw(m *Mesh, world math.Mat4, textures []uint32) {
	if m == nil || m.vao == 0 {
		return
	}
	mvp := r.viewProj.Mul(world)
	gl.UniformMatrix4fv(r.program.Uniform("uMVP"), 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.program.Uniform("uModel"), 1, false, &world[0])

	gl.BindVertexArray(m.vao)
	for _, g := range m.groups {
		tex := r.fallback
		if int(g.Material) < len(textures) && textures[g.Material] != 0 {
			tex = textures[g.Material]
		}
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.DrawElementsWithOffset(gl.TRIANGLES, g.IndexCount, gl.UNSIGNED_INT, uintptr(g.StartIndex*4))
	}
}

// UploadTexture creates a mipmapped texture from img.
func (r *Renderer) UploadTexture(img *image.NRGBA) uint32 {
	if img == nil || img.Bounds().Empty() {
		return 0
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return tex
}

// DeleteTexture releases a texture created by UploadTexture.
func (r *Renderer) DeleteTexture(tex uint32) {
	if tex != 0 {
		gl.DeleteTextures(1, &tex)
	}
}

// ReadPixels returns the current framebuffer as RGBA rows, bottom row
// first, as OpenGL stores them.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}
