// Package scene owns the GPU resources of one ticket view: camera, lights, the
// ticket plane, its textures and the device they live on.
package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	gomath "math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/ticket3d/internal/engine/camera"
	"github.com/Faultbox/ticket3d/internal/engine/gpu"
	"github.com/Faultbox/ticket3d/internal/engine/lighting"
	"github.com/Faultbox/ticket3d/internal/logger"
	"github.com/Faultbox/ticket3d/pkg/math"
)

// Ticket plane dimensions in world units.
const (
	PlaneWidth  = 3.5
	PlaneHeight = 2
)

// Drawable is the surface a scene renders into.
type Drawable interface {
	// DrawableSize returns the size in logical units.
	DrawableSize() (width, height int)
	// PixelRatio returns physical pixels per logical unit.
	PixelRatio() float32
}

// Options configures Create.
type Options struct {
	// Placeholder is shown until the first UpdateSurface. A solid fill is used when nil.
	Placeholder *image.RGBA
	// Antialias requests multisampling from the device.
	Antialias bool
}

// DefaultOptions returns antialiased options without a placeholder image.
func DefaultOptions() Options {
	return Options{Antialias: true}
}

// Stats describes a handle's activity.
type Stats struct {
	Renders  int
	Surfaces int // surfaces applied through UpdateSurface
	Rotation float64
	Width    int // logical
	Height   int
	Ratio    float32 // physical pixels per logical unit
	Disposed bool
}

// Handle is one live ticket scene. All methods must be called from the goroutine
// that owns the device.
type Handle struct {
	id  uuid.UUID
	log *zap.Logger

	device      gpu.Device
	camera      *camera.PerspectiveCamera
	ambient     *lighting.Ambient
	directional *lighting.Directional
	geometry    gpu.Geometry
	material    gpu.Material
	placeholder gpu.Texture
	surface     gpu.Texture

	width, height int
	ratio         float32
	rotation      float64

	stats    Stats
	disposed bool
}

var placeholderFill = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}

// Create sets up a scene on target and renders the placeholder once.
//
// A drawable without area yields a *ResourceAcquisitionError wrapping ErrEmptySurface
// and allocates nothing.
func Create(target Drawable, newDevice gpu.Factory, opts Options) (*Handle, error) {
	w, h := target.DrawableSize()
	if w <= 0 || h <= 0 {
		return nil, &ResourceAcquisitionError{
			Resource: "drawable",
			Err:      fmt.Errorf("%w: %dx%d", ErrEmptySurface, w, h),
		}
	}

	s := &Handle{
		id:     uuid.New(),
		width:  w,
		height: h,
		ratio:  target.PixelRatio(),
	}
	if s.ratio <= 0 {
		s.ratio = 1
	}
	s.log = logger.Named("scene").With(zap.String("scene_id", s.id.String()))

	pw, ph := s.physical(w, h)
	dev, err := newDevice(gpu.DeviceConfig{Width: pw, Height: ph, Antialias: opts.Antialias, Alpha: true})
	if err != nil {
		return nil, &ResourceAcquisitionError{Resource: "device", Err: err}
	}
	s.device = dev

	if err := s.acquire(opts); err != nil {
		// Partial setup is torn down; its own failures are secondary to err.
		_ = s.Dispose()
		return nil, err
	}

	s.camera = camera.NewPerspectiveCamera(float32(w) / float32(h))
	ambient := lighting.NewAmbient()
	directional := lighting.NewDirectional()
	s.ambient, s.directional = &ambient, &directional

	s.log.Info("scene created",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Float32("pixel_ratio", s.ratio),
	)

	if err := s.render(); err != nil {
		_ = s.Dispose()
		return nil, fmt.Errorf("initial render: %w", err)
	}
	return s, nil
}

func (s *Handle) acquire(opts Options) error {
	geo, err := s.device.NewGeometry(gpu.PlaneMesh(PlaneWidth, PlaneHeight))
	if err != nil {
		return &ResourceAcquisitionError{Resource: "geometry", Err: err}
	}
	s.geometry = geo

	img := opts.Placeholder
	if img == nil {
		img = image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, placeholderFill)
	}
	tex, err := s.device.NewTexture(img)
	if err != nil {
		return &ResourceAcquisitionError{Resource: "placeholder texture", Err: err}
	}
	s.placeholder = tex

	mat, err := s.device.NewMaterial(gpu.MaterialDesc{
		Map:         tex,
		Roughness:   0.4,
		Metalness:   0.1,
		DoubleSided: true,
	})
	if err != nil {
		return &ResourceAcquisitionError{Resource: "material", Err: err}
	}
	s.material = mat
	return nil
}

// ID identifies the handle in logs.
func (s *Handle) ID() uuid.UUID {
	return s.id
}

// Device returns the device the scene draws through.
func (s *Handle) Device() gpu.Device {
	return s.device
}

// Stats returns a snapshot of the handle's counters.
func (s *Handle) Stats() Stats {
	st := s.stats
	st.Rotation = s.rotation
	st.Width, st.Height = s.width, s.height
	st.Ratio = s.ratio
	st.Disposed = s.disposed
	return st
}

// UpdateSurface replaces the ticket texture with img and renders once.
//
// The new texture is bound before the previous surface texture is released, so the
// material never references a released texture. The placeholder is kept until Dispose.
// Calls after Dispose are ignored.
func (s *Handle) UpdateSurface(img *image.RGBA) error {
	if s.disposed {
		return nil
	}

	tex, err := s.device.NewTexture(img)
	if err != nil {
		return &ResourceAcquisitionError{Resource: "surface texture", Err: err}
	}

	s.material.SetMap(tex)
	prev := s.surface
	s.surface = tex
	s.stats.Surfaces++

	if prev != nil {
		if err := release(prev); err != nil {
			s.log.Warn("previous surface release failed", zap.Error(err))
		}
	}

	w, h := tex.Size()
	s.log.Debug("surface applied", zap.Int("width", w), zap.Int("height", h))
	return s.render()
}

// Resize adapts the camera and viewport to a new logical size and renders once.
// Sizes without area are ignored.
func (s *Handle) Resize(width, height int) error {
	if s.disposed || width <= 0 || height <= 0 {
		return nil
	}
	s.width, s.height = width, height
	s.camera.SetAspect(width, height)
	s.device.SetViewport(s.physical(width, height))

	s.log.Debug("scene resized", zap.Int("width", width), zap.Int("height", height))
	return s.render()
}

// SetPixelRatio updates the physical-to-logical ratio, for a window moved to another display.
func (s *Handle) SetPixelRatio(ratio float32) error {
	if s.disposed || ratio <= 0 || ratio == s.ratio {
		return nil
	}
	s.ratio = ratio
	s.device.SetViewport(s.physical(s.width, s.height))
	return s.render()
}

// SetRotation turns the ticket to angle radians about the vertical axis and renders once.
// Textures are left alone.
func (s *Handle) SetRotation(angle float64) error {
	if s.disposed {
		return nil
	}
	s.rotation = math.WrapAngle(angle)
	return s.render()
}

func (s *Handle) render() error {
	err := s.device.Render(gpu.DrawCall{
		Geometry:    s.geometry,
		Material:    s.material,
		Model:       math.RotateY(float32(s.rotation)),
		View:        s.camera.ViewMatrix(),
		Projection:  s.camera.ProjectionMatrix(),
		Ambient:     *s.ambient,
		Directional: *s.directional,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	s.stats.Renders++
	return nil
}

// Dispose releases geometry, material, textures, lights and the device, in that
// order. A failing release does not stop the others; failures are reported together
// in a *DisposalError. A second call is a no-op.
func (s *Handle) Dispose() error {
	if s.disposed {
		return nil
	}
	s.disposed = true

	var failed []string
	var errs []error
	step := func(name string, r gpu.Resource) {
		if r == nil {
			return
		}
		if err := release(r); err != nil {
			failed = append(failed, name)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	step("geometry", s.geometry)
	step("material", s.material)
	step("placeholder texture", s.placeholder)
	step("surface texture", s.surface)
	s.ambient, s.directional = nil, nil
	step("device", s.device)

	s.geometry, s.material, s.placeholder, s.surface = nil, nil, nil, nil

	if len(errs) > 0 {
		err := &DisposalError{Failed: failed, Err: errors.Join(errs...)}
		s.log.Error("scene disposed with errors", zap.Error(err))
		return err
	}
	s.log.Info("scene disposed", zap.Int("renders", s.stats.Renders))
	return nil
}

// release calls r.Release, turning a panic into an error.
func release(r gpu.Resource) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.Release()
}

func (s *Handle) physical(w, h int) (int, int) {
	pw := int(gomath.Round(float64(w) * float64(s.ratio)))
	ph := int(gomath.Round(float64(h) * float64(s.ratio)))
	return max(pw, 1), max(ph, 1)
}
