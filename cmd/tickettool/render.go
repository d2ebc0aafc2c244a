package main

import (
	"context"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"time"

	"github.com/Faultbox/ticket3d/internal/config"
	"github.com/Faultbox/ticket3d/internal/engine/gpu"
	"github.com/Faultbox/ticket3d/internal/engine/scene"
	"github.com/Faultbox/ticket3d/internal/engine/softraster"
	"github.com/Faultbox/ticket3d/internal/engine/texture"
	"github.com/Faultbox/ticket3d/internal/qr"
	"github.com/Faultbox/ticket3d/internal/ticket"
)

type renderOptions struct {
	Seed          uint64
	Angle         float64 // degrees
	Width, Height int
}

// canvas is an offscreen drawable of a fixed size.
type canvas struct{ w, h int }

func (c canvas) DrawableSize() (int, int) { return c.w, c.h }
func (c canvas) PixelRatio() float32      { return 1 }

func newCompositor(seed uint64) (*texture.Compositor, error) {
	if seed == 0 {
		return texture.NewCompositor()
	}
	return texture.NewSeededCompositor(seed)
}

// composeSurface builds the flat ticket texture.
func composeSurface(ctx context.Context, req ticket.Request, seed uint64) (*image.RGBA, error) {
	c, err := newCompositor(seed)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	req.ParticipantName = ticket.FormatName(req.ParticipantName)
	return c.Build(ctx, req, qr.NewEncoder())
}

// renderTicket draws the 3D ticket with the software rasterizer.
func renderTicket(ctx context.Context, req ticket.Request, opts renderOptions) (*image.RGBA, error) {
	surface, err := composeSurface(ctx, req, opts.Seed)
	if err != nil {
		return nil, err
	}

	var dev *softraster.Device
	factory := func(cfg gpu.DeviceConfig) (gpu.Device, error) {
		d, err := softraster.New(cfg)
		if err != nil {
			return nil, err
		}
		dev = d
		return d, nil
	}

	h, err := scene.Create(canvas{opts.Width, opts.Height}, factory, scene.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("creating scene: %w", err)
	}
	defer h.Dispose()

	if err := h.UpdateSurface(surface); err != nil {
		return nil, err
	}
	if err := h.SetRotation(opts.Angle * math.Pi / 180); err != nil {
		return nil, err
	}
	return dev.Frame(), nil
}

// parseDate reads YYYY-MM-DD; an empty string means the day of now.
func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return day, nil
}

// writeDefaultConfig saves cfg to path, or to the user config directory when path is empty.
func writeDefaultConfig(cfg *config.Config, path string) (string, error) {
	if path == "" {
		if err := cfg.Save(); err != nil {
			return "", err
		}
		return filepath.Join(config.ConfigDir(), "config.yaml"), nil
	}
	if err := cfg.SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}
