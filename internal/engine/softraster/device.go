// Package softraster is a CPU implementation of gpu.Device.
//
// It draws the ticket without a GL context, which is what headless tools and tests
// use. Triangles are filled with edge functions, textures are sampled with
// perspective-correct coordinates and antialiasing is done by supersampling.
package softraster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/ticket3d/internal/engine/gpu"
)

// SSAAFactor is the supersampling factor per axis when antialiasing is enabled.
const SSAAFactor = 2

// ErrReleased is returned when a released device or resource is used again.
var ErrReleased = errors.New("softraster: resource already released")

// Stats counts device work.
type Stats struct {
	Frames    int
	Triangles int
	Fragments int
	Live      int // resources allocated and not yet released
}

// Device renders into an in-memory RGBA frame.
type Device struct {
	cfg   gpu.DeviceConfig
	scale int

	color *image.RGBA // supersampled color buffer
	depth []float32
	frame *image.RGBA // resolved output

	stats    Stats
	released bool
}

var _ gpu.Device = (*Device)(nil)

// New creates a device for a cfg.Width×cfg.Height surface.
func New(cfg gpu.DeviceConfig) (*Device, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("softraster: invalid surface %dx%d", cfg.Width, cfg.Height)
	}
	d := &Device{cfg: cfg, scale: 1}
	if cfg.Antialias {
		d.scale = SSAAFactor
	}
	d.allocate(cfg.Width, cfg.Height)
	return d, nil
}

// Factory adapts New to gpu.Factory.
func Factory(cfg gpu.DeviceConfig) (gpu.Device, error) {
	return New(cfg)
}

func (d *Device) allocate(w, h int) {
	d.cfg.Width, d.cfg.Height = w, h
	d.color = image.NewRGBA(image.Rect(0, 0, w*d.scale, h*d.scale))
	d.depth = make([]float32, w*d.scale*h*d.scale)
	d.frame = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Config returns the current surface configuration.
func (d *Device) Config() gpu.DeviceConfig {
	return d.cfg
}

// Stats returns the work counters.
func (d *Device) Stats() Stats {
	return d.stats
}

// Frame returns a copy of the last rendered frame.
func (d *Device) Frame() *image.RGBA {
	out := image.NewRGBA(d.frame.Bounds())
	copy(out.Pix, d.frame.Pix)
	return out
}

// SetViewport resizes the surface. Non-positive sizes are ignored.
func (d *Device) SetViewport(width, height int) {
	if width <= 0 || height <= 0 || d.released {
		return
	}
	if width == d.cfg.Width && height == d.cfg.Height {
		return
	}
	d.allocate(width, height)
}

// NewGeometry stores a copy of mesh.
func (d *Device) NewGeometry(mesh gpu.MeshData) (gpu.Geometry, error) {
	if d.released {
		return nil, ErrReleased
	}
	if len(mesh.Indices)%3 != 0 {
		return nil, fmt.Errorf("softraster: index count %d is not a triangle list", len(mesh.Indices))
	}
	for _, i := range mesh.Indices {
		if int(i) >= len(mesh.Vertices) {
			return nil, fmt.Errorf("softraster: index %d out of range", i)
		}
	}
	g := &geometry{dev: d, mesh: gpu.MeshData{
		Vertices: append([]gpu.Vertex(nil), mesh.Vertices...),
		Indices:  append([]uint16(nil), mesh.Indices...),
	}}
	d.stats.Live++
	return g, nil
}

// NewTexture stores a copy of img.
func (d *Device) NewTexture(img *image.RGBA) (gpu.Texture, error) {
	if d.released {
		return nil, ErrReleased
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("softraster: empty texture image")
	}
	b := img.Bounds()
	cp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(cp, cp.Bounds(), img, b.Min, draw.Src)
	d.stats.Live++
	return &texture{dev: d, img: cp}, nil
}

// NewMaterial creates a material from desc.
func (d *Device) NewMaterial(desc gpu.MaterialDesc) (gpu.Material, error) {
	if d.released {
		return nil, ErrReleased
	}
	d.stats.Live++
	return &material{dev: d, desc: desc}, nil
}

// Release frees the buffers. Resources still alive become unusable.
func (d *Device) Release() error {
	if d.released {
		return ErrReleased
	}
	d.released = true
	d.color, d.depth = nil, nil
	return nil
}

// resolve downsamples the color buffer into the output frame.
func (d *Device) resolve() {
	if d.scale == 1 {
		copy(d.frame.Pix, d.color.Pix)
		return
	}
	xdraw.ApproxBiLinear.Scale(d.frame, d.frame.Bounds(), d.color, d.color.Bounds(), xdraw.Src, nil)
}

type geometry struct {
	dev      *Device
	mesh     gpu.MeshData
	released bool
}

func (g *geometry) Release() error {
	if g.released {
		return ErrReleased
	}
	g.released = true
	g.dev.stats.Live--
	return nil
}

type texture struct {
	dev      *Device
	img      *image.RGBA
	released bool
}

func (t *texture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

func (t *texture) Release() error {
	if t.released {
		return ErrReleased
	}
	t.released = true
	t.dev.stats.Live--
	return nil
}

type material struct {
	dev      *Device
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
	m.dev.stats.Live--
	return nil
}
