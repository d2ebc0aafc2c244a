package viewer

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Faultbox/ticket3d/internal/engine/scene"
	"github.com/Faultbox/ticket3d/internal/engine/softraster"
	"github.com/Faultbox/ticket3d/internal/engine/texture"
	"github.com/Faultbox/ticket3d/internal/qr"
	"github.com/Faultbox/ticket3d/internal/ticket"
)

type drawable struct{ w, h int }

func (d drawable) DrawableSize() (int, int) { return d.w, d.h }
func (d drawable) PixelRatio() float32      { return 1 }

// display is a drawable whose density can change, like a window moved between monitors.
type display struct {
	w, h  int
	ratio float32
}

func (d *display) DrawableSize() (int, int) { return d.w, d.h }
func (d *display) PixelRatio() float32      { return d.ratio }

// gateEncoder blocks every encode until released and records concurrency.
type gateEncoder struct {
	gate     chan struct{}
	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
	inner    qr.Encoder
}

func newGateEncoder() *gateEncoder {
	return &gateEncoder{gate: make(chan struct{}), inner: qr.NewEncoder()}
}

func (e *gateEncoder) Encode(ctx context.Context, payload string) (image.Image, error) {
	e.calls.Add(1)
	n := e.inflight.Add(1)
	defer e.inflight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-e.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return e.inner.Encode(ctx, payload)
}

func (e *gateEncoder) open() { close(e.gate) }

var devConf = ticket.Request{
	EventName:       "Dev Conf 2023",
	ParticipantName: "Jane Doe",
	TicketID:        "20230615-EVT1-AB12CD",
}

func newViewer(t *testing.T, enc qr.Encoder) (*Viewer, *texture.Compositor) {
	t.Helper()
	comp, err := texture.NewSeededCompositor(7)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(comp.Close)

	v, err := New(Options{Compositor: comp, Encoder: enc, Device: softraster.Factory})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = v.Unmount() })
	return v, comp
}

// buildTimeout bounds how long a test waits for a surface build. It is generous so
// slow runners and the race detector still finish.
const buildTimeout = 30 * time.Second

// pollUntil polls v until a surface is applied or the deadline passes.
func pollUntil(t *testing.T, v *Viewer) {
	t.Helper()
	deadline := time.Now().Add(buildTimeout)
	for time.Now().Before(deadline) {
		applied, err := v.Poll()
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if applied {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no surface applied before the deadline")
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{Device: softraster.Factory}); err == nil {
		t.Error("expected error without a compositor")
	}
	comp, err := texture.NewCompositor()
	if err != nil {
		t.Fatal(err)
	}
	defer comp.Close()
	if _, err := New(Options{Compositor: comp}); err == nil {
		t.Error("expected error without a device factory")
	}
}

func TestMountAndFirstSurface(t *testing.T) {
	v, comp := newViewer(t, qr.NewEncoder())

	if err := v.Mount(drawable{160, 90}); err != nil {
		t.Fatal(err)
	}
	if v.Scene() == nil || v.Scene().Stats().Renders != 1 {
		t.Fatal("mount should create the scene and render the placeholder")
	}

	if err := v.SetProps(devConf); err != nil {
		t.Fatal(err)
	}
	pollUntil(t, v)

	if got := comp.Composed(); got != 1 {
		t.Errorf("composed = %d, want 1", got)
	}
	if wanted, shown := v.Current(); wanted != shown {
		t.Errorf("generation wanted %d, shown %d", wanted, shown)
	}
	if v.Scene().Stats().Surfaces != 1 {
		t.Errorf("surfaces = %d", v.Scene().Stats().Surfaces)
	}
}

func TestRotationDoesNotRecompose(t *testing.T) {
	v, comp := newViewer(t, qr.NewEncoder())
	if err := v.Mount(drawable{160, 90}); err != nil {
		t.Fatal(err)
	}
	if err := v.SetProps(devConf); err != nil {
		t.Fatal(err)
	}
	pollUntil(t, v)

	renders := v.Scene().Stats().Renders
	req := devConf
	for i := 1; i <= 50; i++ {
		req.Rotation = float64(i) * 0.05
		if err := v.SetProps(req); err != nil {
			t.Fatal(err)
		}
	}

	if got := comp.Composed(); got != 1 {
		t.Errorf("composed = %d after rotation-only changes, want 1", got)
	}
	st := v.Scene().Stats()
	if st.Renders != renders+50 {
		t.Errorf("renders = %d, want %d", st.Renders, renders+50)
	}
	if st.Surfaces != 1 {
		t.Errorf("surfaces = %d, want 1", st.Surfaces)
	}
}

func TestRapidQRTogglesKeepOneEncode(t *testing.T) {
	enc := newGateEncoder()
	v, _ := newViewer(t, enc)
	if err := v.Mount(drawable{160, 90}); err != nil {
		t.Fatal(err)
	}

	req := devConf
	for i := range 20 {
		req.ShowQR = i%2 == 0
		if err := v.SetProps(req); err != nil {
			t.Fatal(err)
		}
	}
	// End on QR visible.
	req.ShowQR = true
	if err := v.SetProps(req); err != nil {
		t.Fatal(err)
	}

	enc.open()
	pollUntil(t, v)

	if p := enc.peak.Load(); p > 1 {
		t.Errorf("peak concurrent encodes = %d, want at most 1", p)
	}
	if c := enc.calls.Load(); c > 11 {
		t.Errorf("encoder called %d times for 11 QR-on requests", c)
	}
	if wanted, shown := v.Current(); wanted != shown {
		t.Errorf("shown generation %d is stale, want %d", shown, wanted)
	}
	if v.Scene().Stats().Surfaces != 1 {
		t.Errorf("stale surfaces were applied: %d", v.Scene().Stats().Surfaces)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	v, _ := newViewer(t, qr.NewEncoder())
	if err := v.Mount(drawable{160, 90}); err != nil {
		t.Fatal(err)
	}

	if err := v.SetProps(devConf); err != nil {
		t.Fatal(err)
	}
	// Let the first build finish and sit in the results channel.
	deadline := time.Now().Add(buildTimeout)
	for len(v.results) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first build never finished")
		}
		time.Sleep(time.Millisecond)
	}

	next := devConf
	next.EventName = "Other Event"
	if err := v.SetProps(next); err != nil {
		t.Fatal(err)
	}
	pollUntil(t, v)

	if wanted, shown := v.Current(); wanted != 2 || shown != 2 {
		t.Errorf("generations wanted=%d shown=%d, want 2/2", wanted, shown)
	}
	if v.Scene().Stats().Surfaces != 1 {
		t.Errorf("surfaces = %d, the first build should have been dropped", v.Scene().Stats().Surfaces)
	}
}

func TestResultsAfterUnmountDiscarded(t *testing.T) {
	enc := newGateEncoder()
	v, _ := newViewer(t, enc)
	if err := v.Mount(drawable{160, 90}); err != nil {
		t.Fatal(err)
	}
	req := devConf
	req.ShowQR = true
	if err := v.SetProps(req); err != nil {
		t.Fatal(err)
	}

	h := v.Scene()
	if err := v.Unmount(); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	enc.open()

	applied, err := v.Poll()
	if applied || err != nil {
		t.Errorf("Poll after unmount = %v, %v", applied, err)
	}
	if st := h.Stats(); !st.Disposed || st.Surfaces != 0 {
		t.Errorf("scene after unmount = %+v", st)
	}
	if err := v.Unmount(); err != nil {
		t.Errorf("second Unmount = %v", err)
	}
	if err := v.SetProps(devConf); err != nil {
		t.Errorf("SetProps after unmount = %v", err)
	}
}

func TestZeroSizeMountRetriedOnResize(t *testing.T) {
	v, _ := newViewer(t, qr.NewEncoder())

	if err := v.SetProps(devConf); err != nil {
		t.Fatal(err)
	}
	if err := v.Mount(drawable{0, 0}); err != nil {
		t.Fatalf("zero-size mount should be a no-op, got %v", err)
	}
	if v.Scene() != nil {
		t.Fatal("scene created for a zero-size drawable")
	}

	// The surface finishes before there is a scene to show it.
	deadline := time.Now().Add(buildTimeout)
	for {
		if _, err := v.Poll(); err != nil {
			t.Fatal(err)
		}
		if _, shown := v.Current(); shown == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("build never finished")
		}
		time.Sleep(time.Millisecond)
	}

	if err := v.Resize(160, 90); err != nil {
		t.Fatal(err)
	}
	s := v.Scene()
	if s == nil {
		t.Fatal("resize did not create the deferred scene")
	}
	if st := s.Stats(); st.Surfaces != 1 || st.Width != 160 {
		t.Errorf("deferred scene stats = %+v", st)
	}

	if err := v.Resize(320, 180); err != nil {
		t.Fatal(err)
	}
	if st := s.Stats(); st.Width != 320 || st.Height != 180 {
		t.Errorf("resize not forwarded: %+v", st)
	}
}

func TestResizeFollowsPixelRatio(t *testing.T) {
	v, _ := newViewer(t, qr.NewEncoder())
	target := &display{w: 160, h: 90, ratio: 1}
	if err := v.Mount(target); err != nil {
		t.Fatal(err)
	}
	dev := v.Scene().Device().(*softraster.Device)
	if cfg := dev.Config(); cfg.Width != 160 || cfg.Height != 90 {
		t.Fatalf("initial device size %dx%d", cfg.Width, cfg.Height)
	}

	// Moved to a HiDPI display: same logical size, twice the pixels.
	target.ratio = 2
	if err := v.Resize(160, 90); err != nil {
		t.Fatal(err)
	}
	if cfg := dev.Config(); cfg.Width != 320 || cfg.Height != 180 {
		t.Errorf("device size after density change = %dx%d, want 320x180", cfg.Width, cfg.Height)
	}
	if st := v.Scene().Stats(); st.Ratio != 2 || st.Width != 160 {
		t.Errorf("scene stats = %+v", st)
	}

	target.w, target.h, target.ratio = 200, 100, 1
	if err := v.Resize(200, 100); err != nil {
		t.Fatal(err)
	}
	if cfg := dev.Config(); cfg.Width != 200 || cfg.Height != 100 {
		t.Errorf("device size = %dx%d, want 200x100", cfg.Width, cfg.Height)
	}
}

func TestMountTwice(t *testing.T) {
	v, _ := newViewer(t, qr.NewEncoder())
	if err := v.Mount(drawable{10, 10}); err != nil {
		t.Fatal(err)
	}
	if err := v.Mount(drawable{10, 10}); err == nil {
		t.Error("second mount should fail")
	}
}

func TestEncoderFailureStillShowsTicket(t *testing.T) {
	v, _ := newViewer(t, failingEncoder{})
	if err := v.Mount(drawable{160, 90}); err != nil {
		t.Fatal(err)
	}
	req := devConf
	req.ShowQR = true
	if err := v.SetProps(req); err != nil {
		t.Fatal(err)
	}
	pollUntil(t, v)
}

type failingEncoder struct{}

func (failingEncoder) Encode(context.Context, string) (image.Image, error) {
	return nil, &qr.EncodingError{Payload: "x", Err: errors.New("too long")}
}

func TestViewersAreIndependent(t *testing.T) {
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comp, err := texture.NewCompositor()
			if err != nil {
				t.Error(err)
				return
			}
			defer comp.Close()
			v, err := New(Options{Compositor: comp, Encoder: qr.NewEncoder(), Device: softraster.Factory})
			if err != nil {
				t.Error(err)
				return
			}
			defer v.Unmount()
			if err := v.Mount(drawable{64, 36}); err != nil {
				t.Error(err)
				return
			}
			if err := v.SetProps(devConf); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

var _ scene.Drawable = drawable{}
