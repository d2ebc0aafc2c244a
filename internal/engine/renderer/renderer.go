// Package renderer implements gpu.Device on OpenGL 4.1 core.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/ticket3d/internal/engine/gpu"
	"github.com/Faultbox/ticket3d/internal/engine/shader"
	"github.com/Faultbox/ticket3d/internal/logger"
)

// ErrReleased is returned when a released device or resource is used again.
var ErrReleased = errors.New("renderer: resource already released")

// Renderer draws the ticket with OpenGL.
type Renderer struct {
	config  gpu.DeviceConfig
	program *shader.Program

	released bool
}

var _ gpu.Device = (*Renderer)(nil)

// New creates a renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created and made current.
func New(cfg gpu.DeviceConfig) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("renderer: invalid surface %dx%d", cfg.Width, cfg.Height)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	if cfg.Antialias {
		gl.Enable(gl.MULTISAMPLE)
	}
	if cfg.Alpha {
		gl.ClearColor(0, 0, 0, 0)
	} else {
		gl.ClearColor(0, 0, 0, 1)
	}
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	program, err := shader.CompileTicket()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	return &Renderer{config: cfg, program: program}, nil
}

// Factory adapts New to gpu.Factory.
func Factory(cfg gpu.DeviceConfig) (gpu.Device, error) {
	return New(cfg)
}

// SetViewport handles a surface resize.
func (r *Renderer) SetViewport(width, height int) {
	if width <= 0 || height <= 0 || r.released {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport in physical pixels.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// NewGeometry uploads mesh into a VAO with interleaved position, normal and uv.
func (r *Renderer) NewGeometry(mesh gpu.MeshData) (gpu.Geometry, error) {
	if r.released {
		return nil, ErrReleased
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, errors.New("renderer: empty mesh")
	}

	g := &geometry{count: int32(len(mesh.Indices))}
	vertices := mesh.Floats()

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*2, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	stride := int32(8 * 4)
	// Position (location = 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	// Normal (location = 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord (location = 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	logger.Debug("geometry uploaded",
		zap.Uint32("vao", g.vao),
		zap.Int("indices", len(mesh.Indices)),
	)
	return g, nil
}

// NewTexture uploads img with mipmaps.
func (r *Renderer) NewTexture(img *image.RGBA) (gpu.Texture, error) {
	if r.released {
		return nil, ErrReleased
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("renderer: empty texture image")
	}

	// GL wants tightly packed rows starting at the origin.
	b := img.Bounds()
	if b.Min != (image.Point{}) || img.Stride != b.Dx()*4 {
		packed := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(packed, packed.Bounds(), img, b.Min, draw.Src)
		img = packed
	}

	t := &texture{width: b.Dx(), height: b.Dy()}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(t.width), int32(t.height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return t, nil
}

// NewMaterial stores the material parameters; it owns no GL objects.
func (r *Renderer) NewMaterial(desc gpu.MaterialDesc) (gpu.Material, error) {
	if r.released {
		return nil, ErrReleased
	}
	return &material{desc: desc}, nil
}

// Render clears the default framebuffer and draws call.
func (r *Renderer) Render(call gpu.DrawCall) error {
	if r.released {
		return ErrReleased
	}
	geo, ok := call.Geometry.(*geometry)
	if !ok || geo.released {
		return fmt.Errorf("renderer: unusable geometry %T", call.Geometry)
	}
	mat, ok := call.Material.(*material)
	if !ok || mat.released {
		return fmt.Errorf("renderer: unusable material %T", call.Material)
	}

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if mat.desc.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	p := r.program
	p.Use()
	gl.UniformMatrix4fv(p.Uniform(shader.UniformModel), 1, false, call.Model.Ptr())
	gl.UniformMatrix4fv(p.Uniform(shader.UniformView), 1, false, call.View.Ptr())
	gl.UniformMatrix4fv(p.Uniform(shader.UniformProjection), 1, false, call.Projection.Ptr())

	amb := call.Ambient.Radiance()
	key := call.Directional.Radiance()
	dir := call.Directional.Direction()
	gl.Uniform3f(p.Uniform(shader.UniformAmbient), amb[0], amb[1], amb[2])
	gl.Uniform3f(p.Uniform(shader.UniformLightColor), key[0], key[1], key[2])
	gl.Uniform3f(p.Uniform(shader.UniformLightDir), dir.X, dir.Y, dir.Z)
	gl.Uniform1f(p.Uniform(shader.UniformRoughness), mat.desc.Roughness)
	gl.Uniform1f(p.Uniform(shader.UniformMetalness), mat.desc.Metalness)

	hasMap := int32(0)
	if tex, ok := mat.desc.Map.(*texture); ok && !tex.released {
		hasMap = 1
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.id)
		gl.Uniform1i(p.Uniform(shader.UniformMap), 0)
	}
	gl.Uniform1i(p.Uniform(shader.UniformHasMap), hasMap)

	gl.BindVertexArray(geo.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, geo.count, gl.UNSIGNED_SHORT, 0)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return nil
}

// ReadPixels reads the default framebuffer as tightly packed RGBA rows, bottom row first.
func (r *Renderer) ReadPixels() []byte {
	pixels := make([]byte, r.config.Width*r.config.Height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.config.Width), int32(r.config.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// Release frees the shader program. Geometry and textures are released by their owners.
func (r *Renderer) Release() error {
	if r.released {
		return ErrReleased
	}
	logger.Info("closing renderer")
	r.released = true
	r.program.Delete()
	return nil
}

type geometry struct {
	vao, vbo, ebo uint32
	count         int32
	released      bool
}

func (g *geometry) Release() error {
	if g.released {
		return ErrReleased
	}
	g.released = true
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	return nil
}

type texture struct {
	id            uint32
	width, height int
	released      bool
}

func (t *texture) Size() (int, int) { return t.width, t.height }

func (t *texture) Release() error {
	if t.released {
		return ErrReleased
	}
	t.released = true
	gl.DeleteTextures(1, &t.id)
	return nil
}

type material struct {
	desc     gpu.MaterialDesc
	released bool
}

func (m *material) SetMap(tex gpu.Texture) { m.desc.Map = tex }
func (m *material) Map() gpu.Texture       { return m.desc.Map }

func (m *material) Release() error {
	if m.released {
		return ErrReleased
	}
	m.released = true
	return nil
}
