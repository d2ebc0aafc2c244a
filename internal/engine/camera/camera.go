// Package camera provides the perspective camera of the ticket scene.
package camera

import (
	gomath "math"

	"github.com/Faultbox/ticket3d/pkg/math"
)

// PerspectiveCamera looks from Position at Target.
type PerspectiveCamera struct {
	FovY   float32 // vertical field of view, degrees
	Aspect float32 // width / height
	Near   float32
	Far    float32

	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3
}

// NewPerspectiveCamera returns the ticket camera: 50° vertical FOV, clip planes 0.1..1000,
// five units in front of the origin looking at it.
func NewPerspectiveCamera(aspect float32) *PerspectiveCamera {
	return &PerspectiveCamera{
		FovY:     50,
		Aspect:   aspect,
		Near:     0.1,
		Far:      1000,
		Position: math.Vec3{X: 0, Y: 0, Z: 5},
		Up:       math.Vec3{X: 0, Y: 1, Z: 0},
	}
}

// SetAspect updates the aspect ratio from a surface size. Degenerate sizes are ignored.
func (c *PerspectiveCamera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the view matrix for this camera.
func (c *PerspectiveCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection for the current aspect.
func (c *PerspectiveCamera) ProjectionMatrix() math.Mat4 {
	fov := float32(float64(c.FovY) * gomath.Pi / 180)
	return math.Perspective(fov, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection × view.
func (c *PerspectiveCamera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}
