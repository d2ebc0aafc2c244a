package viewer

import (
	gomath "math"
	"time"

	"github.com/Faultbox/ticket3d/internal/ticket"
	"github.com/Faultbox/ticket3d/pkg/math"
)

// State of the rotation driver.
type State int

const (
	AutoRotating State = iota
	Manual
)

func (s State) String() string {
	switch s {
	case AutoRotating:
		return "auto-rotating"
	case Manual:
		return "manual"
	}
	return "unknown"
}

// DefaultSpeed is the auto-rotation speed in radians per second.
const DefaultSpeed = 1.2

// DefaultStep is the manual rotation step: a quarter of a half turn.
const DefaultStep = gomath.Pi / 4

// Controller drives the ticket's rotation angle and QR visibility from user gestures.
type Controller struct {
	state  State
	angle  float64
	speed  float64
	step   float64
	showQR bool
}

// NewController returns a controller at angle 0. It starts auto-rotating when auto is set.
func NewController(speed, step float64, auto bool) *Controller {
	c := &Controller{speed: speed, step: step, state: Manual}
	if auto {
		c.state = AutoRotating
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Angle returns the rotation in radians, in [0, 2π).
func (c *Controller) Angle() float64 { return c.angle }

// ShowQR reports whether the QR glyph should be visible.
func (c *Controller) ShowQR() bool { return c.showQR }

// Tick advances the angle by speed·dt while auto-rotating and reports whether it moved.
func (c *Controller) Tick(dt time.Duration) bool {
	if c.state != AutoRotating || dt <= 0 || c.speed == 0 {
		return false
	}
	c.angle = math.WrapAngle(c.angle + c.speed*dt.Seconds())
	return true
}

// RotateLeft turns one step counter-clockwise and stops auto-rotation.
func (c *Controller) RotateLeft() {
	c.state = Manual
	c.angle = math.WrapAngle(c.angle - c.step)
}

// RotateRight turns one step clockwise and stops auto-rotation.
func (c *Controller) RotateRight() {
	c.state = Manual
	c.angle = math.WrapAngle(c.angle + c.step)
}

// ToggleQR flips QR visibility and stops auto-rotation so the code can be scanned.
func (c *Controller) ToggleQR() {
	c.showQR = !c.showQR
	c.state = Manual
}

// ToggleAutoRotate switches between auto-rotating and manual.
func (c *Controller) ToggleAutoRotate() {
	if c.state == AutoRotating {
		c.state = Manual
	} else {
		c.state = AutoRotating
	}
}

// Apply copies the controller's angle and QR flag into req.
func (c *Controller) Apply(req ticket.Request) ticket.Request {
	req.Rotation = c.angle
	req.ShowQR = c.showQR
	return req
}

// Status is a short human-readable summary, e.g. "manual, QR shown".
func (c *Controller) Status() string {
	if c.showQR {
		return c.state.String() + ", QR shown"
	}
	return c.state.String()
}
