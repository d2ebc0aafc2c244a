// Package gpu defines the device abstraction the ticket scene draws through.
//
// Two backends implement it: the OpenGL renderer used by the desktop viewer and a
// software rasterizer used headless.
package gpu

import (
	"image"

	"github.com/Faultbox/ticket3d/internal/engine/lighting"
	"github.com/Faultbox/ticket3d/pkg/math"
)

// DeviceConfig describes the drawing surface a device renders into.
type DeviceConfig struct {
	Width     int // physical pixels
	Height    int // physical pixels
	Antialias bool
	Alpha     bool // transparent clear color
}

// Resource is anything a device allocated and the caller must release.
type Resource interface {
	Release() error
}

// Geometry is an uploaded mesh.
type Geometry interface {
	Resource
}

// Texture is an uploaded RGBA image.
type Texture interface {
	Resource
	Size() (width, height int)
}

// Material binds surface parameters and a color map.
type Material interface {
	Resource
	// SetMap swaps the color map. The previous texture is not released.
	SetMap(tex Texture)
	Map() Texture
}

// MaterialDesc describes a physically based material.
type MaterialDesc struct {
	Map         Texture
	Roughness   float32
	Metalness   float32
	DoubleSided bool
}

// DrawCall is one mesh drawn with one material under one camera and light setup.
type DrawCall struct {
	Geometry    Geometry
	Material    Material
	Model       math.Mat4
	View        math.Mat4
	Projection  math.Mat4
	Ambient     lighting.Ambient
	Directional lighting.Directional
}

// Device allocates resources and executes draw calls.
type Device interface {
	NewGeometry(mesh MeshData) (Geometry, error)
	NewTexture(img *image.RGBA) (Texture, error)
	NewMaterial(desc MaterialDesc) (Material, error)

	// SetViewport resizes the drawing surface in physical pixels.
	SetViewport(width, height int)

	// Render clears the surface and draws call.
	Render(call DrawCall) error

	Release() error
}

// Factory creates a device for a surface.
type Factory func(cfg DeviceConfig) (Device, error)
