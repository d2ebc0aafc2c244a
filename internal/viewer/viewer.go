// Package viewer mounts a ticket scene and keeps it in sync with changing props.
//
// Surface building runs on a background worker; everything that touches the scene
// happens on the goroutine calling Viewer methods.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/ticket3d/internal/engine/gpu"
	"github.com/Faultbox/ticket3d/internal/engine/scene"
	"github.com/Faultbox/ticket3d/internal/engine/texture"
	"github.com/Faultbox/ticket3d/internal/logger"
	"github.com/Faultbox/ticket3d/internal/qr"
	"github.com/Faultbox/ticket3d/internal/ticket"
)

// Options wires a viewer to its collaborators.
type Options struct {
	Compositor *texture.Compositor
	Encoder    qr.Encoder
	Device     gpu.Factory
	Scene      scene.Options
}

type job struct {
	gen uint64
	ctx context.Context
	req ticket.Request
}

type result struct {
	gen uint64
	img *image.RGBA
}

// Viewer owns one scene and the surface builds feeding it.
type Viewer struct {
	opts Options
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mailbox chan job
	results chan result

	target    scene.Drawable
	scene     *scene.Handle
	mounted   bool
	unmounted bool

	req       ticket.Request
	hasProps  bool
	gen       uint64
	jobCancel context.CancelFunc
	pending   *image.RGBA // latest surface waiting for a scene
	applied   uint64      // generation shown on screen
}

// New starts the build worker. The viewer must be unmounted to stop it.
func New(opts Options) (*Viewer, error) {
	if opts.Compositor == nil {
		return nil, errors.New("viewer: compositor is required")
	}
	if opts.Device == nil {
		return nil, errors.New("viewer: device factory is required")
	}
	if opts.Scene.Placeholder == nil {
		opts.Scene.Placeholder = opts.Compositor.Placeholder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &Viewer{
		opts:    opts,
		log:     logger.Named("viewer"),
		ctx:     ctx,
		cancel:  cancel,
		mailbox: make(chan job, 1),
		results: make(chan result, 1),
	}
	go v.work()
	return v, nil
}

// work builds one surface at a time, always the most recently submitted one.
func (v *Viewer) work() {
	for {
		select {
		case <-v.ctx.Done():
			return
		case j := <-v.mailbox:
			if j.ctx.Err() != nil {
				continue
			}
			img, err := v.opts.Compositor.Build(j.ctx, j.req, v.opts.Encoder)
			if err != nil || j.ctx.Err() != nil {
				// Superseded; a newer job is on its way.
				continue
			}
			select {
			case v.results <- result{gen: j.gen, img: img}:
			case <-v.ctx.Done():
				return
			}
		}
	}
}

// Mount attaches the viewer to target and creates the scene. A target without area
// is not an error: the scene is created on the first Resize that gives it one.
func (v *Viewer) Mount(target scene.Drawable) error {
	if v.unmounted {
		return errors.New("viewer: mount after unmount")
	}
	if v.mounted {
		return errors.New("viewer: already mounted")
	}
	v.target = target
	v.mounted = true

	w, h := target.DrawableSize()
	return v.createScene(w, h)
}

func (v *Viewer) createScene(w, h int) error {
	s, err := scene.Create(sized{v.target, w, h}, v.opts.Device, v.opts.Scene)
	if errors.Is(err, scene.ErrEmptySurface) {
		v.log.Debug("drawable has no area yet, deferring scene", zap.Int("width", w), zap.Int("height", h))
		return nil
	}
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	v.scene = s

	if v.pending != nil {
		img := v.pending
		v.pending = nil
		if err := s.UpdateSurface(img); err != nil {
			return err
		}
	}
	if v.hasProps {
		return s.SetRotation(v.req.Rotation)
	}
	return nil
}

// SetProps updates the ticket. A content change starts a new surface build and
// cancels the previous one; a rotation change renders immediately.
func (v *Viewer) SetProps(req ticket.Request) error {
	if v.unmounted {
		return nil
	}
	prev, had := v.req, v.hasProps
	v.req, v.hasProps = req, true

	if !had || prev.Content() != req.Content() {
		v.submit(req)
	}
	if v.scene != nil && (!had || prev.Rotation != req.Rotation) {
		return v.scene.SetRotation(req.Rotation)
	}
	return nil
}

func (v *Viewer) submit(req ticket.Request) {
	if v.jobCancel != nil {
		v.jobCancel()
	}
	v.gen++
	ctx, cancel := context.WithCancel(v.ctx)
	v.jobCancel = cancel

	// Replace whatever the worker has not picked up yet.
	select {
	case <-v.mailbox:
	default:
	}
	v.mailbox <- job{gen: v.gen, ctx: ctx, req: req}

	v.log.Debug("surface build queued",
		zap.Uint64("generation", v.gen),
		zap.Stringer("content", req.Content()))
}

// Poll applies a finished surface if it belongs to the current props and reports
// whether one was applied. Call it once per frame.
func (v *Viewer) Poll() (bool, error) {
	if v.unmounted {
		return false, nil
	}

	var latest *result
drain:
	for {
		select {
		case r := <-v.results:
			if r.gen == v.gen {
				latest = &r
			}
		default:
			break drain
		}
	}
	if latest == nil {
		return false, nil
	}

	v.applied = latest.gen
	if v.scene == nil {
		v.pending = latest.img
		return false, nil
	}
	if err := v.scene.UpdateSurface(latest.img); err != nil {
		return false, err
	}
	return true, nil
}

// Resize follows the drawable's logical size and its current pixel ratio. It also
// creates a scene deferred by Mount.
func (v *Viewer) Resize(width, height int) error {
	if !v.mounted || v.unmounted {
		return nil
	}
	if v.scene == nil {
		return v.createScene(width, height)
	}
	// A move to another display changes the density along with the size.
	if err := v.scene.SetPixelRatio(v.target.PixelRatio()); err != nil {
		return err
	}
	return v.scene.Resize(width, height)
}

// Scene returns the live scene, or nil before it could be created.
func (v *Viewer) Scene() *scene.Handle {
	return v.scene
}

// Current reports the generation of the props and of the surface on screen.
func (v *Viewer) Current() (wanted, shown uint64) {
	return v.gen, v.applied
}

// Unmount cancels pending builds and disposes the scene. Builds finishing later are
// discarded. Calling it again does nothing.
func (v *Viewer) Unmount() error {
	if v.unmounted {
		return nil
	}
	v.unmounted = true
	if v.jobCancel != nil {
		v.jobCancel()
	}
	v.cancel()

	if v.scene == nil {
		return nil
	}
	err := v.scene.Dispose()
	v.scene = nil
	return err
}

// sized reports a fixed size for a drawable whose size is known from a resize event.
type sized struct {
	scene.Drawable
	w, h int
}

func (s sized) DrawableSize() (int, int) { return s.w, s.h }
