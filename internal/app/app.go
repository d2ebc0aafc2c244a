// Package app runs the desktop ticket viewer: window, input, controller and viewer.
package app

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/ticket3d/internal/config"
	"github.com/Faultbox/ticket3d/internal/engine/capture"
	"github.com/Faultbox/ticket3d/internal/engine/gpu"
	"github.com/Faultbox/ticket3d/internal/engine/input"
	"github.com/Faultbox/ticket3d/internal/engine/renderer"
	"github.com/Faultbox/ticket3d/internal/engine/scene"
	"github.com/Faultbox/ticket3d/internal/engine/texture"
	"github.com/Faultbox/ticket3d/internal/engine/window"
	"github.com/Faultbox/ticket3d/internal/logger"
	"github.com/Faultbox/ticket3d/internal/qr"
	"github.com/Faultbox/ticket3d/internal/ticket"
	"github.com/Faultbox/ticket3d/internal/viewer"
)

// App is the viewer application instance.
type App struct {
	running bool

	window     *window.Window
	device     *renderer.Renderer
	input      *input.Input
	compositor *texture.Compositor
	viewer     *viewer.Viewer
	ctrl       *viewer.Controller
	capture    *capture.Capture

	base       ticket.Request
	title      string // base window title
	status     string // controller status shown in the title
	saves      chan saveTarget
	dialogOpen bool
}

// saveTarget is where a snapshot goes once the dialog closes.
// A zero value means the dialog was cancelled.
type saveTarget struct {
	path     string
	fallback bool // no native dialog; write into the capture directory
}

// New creates the window, GL device and viewer.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	a := &App{
		input:   input.New(input.DefaultBindings()),
		capture: capture.New(cfg.Capture.Dir, cfg.Capture.Prefix),
		title:   cfg.Window.Title,
		saves:   make(chan saveTarget, 1),
		base: ticket.Request{
			EventName:       cfg.Ticket.EventName,
			ParticipantName: ticket.FormatName(cfg.Ticket.ParticipantName),
			TicketID:        cfg.Ticket.TicketID,
		},
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Antialias:  cfg.Window.Antialias,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.compositor, err = texture.NewCompositor()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load ticket fonts: %w", err)
	}

	a.viewer, err = viewer.New(viewer.Options{
		Compositor: a.compositor,
		Encoder:    qr.NewEncoder(),
		Device:     a.newDevice,
		Scene:      scene.Options{Antialias: cfg.Window.Antialias},
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	step := cfg.Rotation.StepDegrees * math.Pi / 180
	a.ctrl = viewer.NewController(cfg.Rotation.Speed, step, cfg.Rotation.AutoRotate)
	if cfg.Ticket.ShowQR {
		// Starting with the code visible is not a gesture; keep auto-rotation as configured.
		a.ctrl.ToggleQR()
		if cfg.Rotation.AutoRotate {
			a.ctrl.ToggleAutoRotate()
		}
	}

	if !ticket.IsLatinName(a.base.ParticipantName) && a.base.ParticipantName != "" {
		logger.Warn("participant name is not plain Latin text",
			zap.String("participant", a.base.ParticipantName))
	}

	if err := a.viewer.SetProps(a.ctrl.Apply(a.base)); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.viewer.Mount(a.window); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to mount viewer: %w", err)
	}

	a.updateTitle()
	logger.Info("viewer initialized successfully")
	return a, nil
}

// newDevice creates the GL renderer; the GL context must be current.
func (a *App) newDevice(cfg gpu.DeviceConfig) (gpu.Device, error) {
	r, err := renderer.New(cfg)
	if err != nil {
		return nil, err
	}
	a.device = r
	return r, nil
}

// Run starts the main loop.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}

		before := a.renders()

		if rs := a.input.Resized(); rs != nil {
			if err := a.viewer.Resize(rs.Width, rs.Height); err != nil {
				return fmt.Errorf("resize: %w", err)
			}
		}
		for _, action := range a.input.Actions() {
			a.handle(action)
		}
		a.updateTitle()

		if err := a.frame(dt); err != nil {
			return err
		}
		rendered := a.renders() != before

		select {
		case target := <-a.saves:
			a.dialogOpen = false
			if target != (saveTarget{}) {
				if err := a.save(target); err != nil {
					logger.Error("saving ticket failed", zap.Error(err))
				}
				rendered = true
			}
		default:
		}

		if rendered {
			a.window.SwapBuffers()
		} else {
			// Nothing changed; avoid spinning when vsync is off.
			time.Sleep(time.Millisecond)
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// frame advances the controller, pushes props and applies finished surfaces.
func (a *App) frame(dt time.Duration) error {
	a.ctrl.Tick(dt)
	if err := a.viewer.SetProps(a.ctrl.Apply(a.base)); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if _, err := a.viewer.Poll(); err != nil {
		return fmt.Errorf("apply surface: %w", err)
	}
	return nil
}

// renders counts draws so far; a frame that drew nothing is not swapped.
func (a *App) renders() int {
	if s := a.viewer.Scene(); s != nil {
		return s.Stats().Renders
	}
	return 0
}

// updateTitle shows the event and the rotation mode in the window title.
func (a *App) updateTitle() {
	status := a.ctrl.Status()
	if status == a.status {
		return
	}
	a.status = status

	title := a.title
	if a.base.EventName != "" {
		title += ": " + a.base.EventName
	}
	a.window.SetTitle(fmt.Sprintf("%s (%s)", title, status))
}

func (a *App) handle(action input.Action) {
	logger.Debug("gesture", zap.Stringer("action", action))

	switch action {
	case input.ActionQuit:
		a.running = false
	case input.ActionRotateLeft:
		a.ctrl.RotateLeft()
	case input.ActionRotateRight:
		a.ctrl.RotateRight()
	case input.ActionToggleQR:
		a.ctrl.ToggleQR()
	case input.ActionToggleAutoRotate:
		a.ctrl.ToggleAutoRotate()
	case input.ActionSave:
		a.openSaveDialog()
	}
}

// openSaveDialog asks for a destination off the main thread; the path is picked
// up by Run, which owns the GL context.
func (a *App) openSaveDialog() {
	if a.dialogOpen {
		return
	}
	a.dialogOpen = true
	suggested := filepath.Base(a.capture.Filename())

	go func() {
		path, err := dialog.File().
			Filter("PNG Image", "png").
			Title("Save Ticket").
			SetStartFile(suggested).
			Save()

		var target saveTarget
		switch {
		case err == nil:
			target.path = path
		case errors.Is(err, dialog.ErrCancelled):
		default:
			logger.Warn("file dialog failed, saving to capture dir", zap.Error(err))
			target.fallback = true
		}
		a.saves <- target
	}()
}

// save renders the current frame again and writes it out.
func (a *App) save(target saveTarget) error {
	s := a.viewer.Scene()
	if s == nil || a.device == nil {
		return errors.New("no scene to capture")
	}
	if err := s.SetRotation(a.ctrl.Angle()); err != nil {
		return err
	}

	w, h := a.device.Size()
	img, err := capture.FromGL(a.device.ReadPixels(), w, h)
	if err != nil {
		return err
	}

	path := target.path
	if target.fallback {
		if path, err = a.capture.Save(img); err != nil {
			return err
		}
	} else {
		if filepath.Ext(path) == "" {
			path += ".png"
		}
		if err := capture.WritePNG(path, img); err != nil {
			return err
		}
	}

	logger.Info("ticket saved", zap.String("path", path))
	return nil
}

// Close releases the viewer, fonts and window.
func (a *App) Close() {
	logger.Info("closing viewer")

	if a.viewer != nil {
		if err := a.viewer.Unmount(); err != nil {
			logger.Warn("viewer unmount reported errors", zap.Error(err))
		}
	}
	if a.compositor != nil {
		a.compositor.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
