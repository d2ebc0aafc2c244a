package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/ticket3d/pkg/math"
)

func TestNewPerspectiveCamera(t *testing.T) {
	c := NewPerspectiveCamera(2)
	if c.FovY != 50 || c.Near != 0.1 || c.Far != 1000 {
		t.Errorf("camera = %+v", c)
	}
	if c.Position != (math.Vec3{Z: 5}) {
		t.Errorf("position = %+v", c.Position)
	}
}

func TestSetAspect(t *testing.T) {
	c := NewPerspectiveCamera(1)

	c.SetAspect(800, 400)
	if c.Aspect != 2 {
		t.Errorf("aspect = %v, want 2", c.Aspect)
	}

	c.SetAspect(0, 400)
	if c.Aspect != 2 {
		t.Error("zero width must not change the aspect")
	}
}

func TestViewProjectionCentersOrigin(t *testing.T) {
	c := NewPerspectiveCamera(16.0 / 9.0)
	clip := c.ViewProjection().MulVec4(math.Vec4{0, 0, 0, 1})

	if gomath.Abs(float64(clip[0])) > 1e-5 || gomath.Abs(float64(clip[1])) > 1e-5 {
		t.Errorf("origin projects off-center: %v", clip)
	}
	if clip[3] <= 0 {
		t.Errorf("origin is behind the camera: w=%v", clip[3])
	}
}

func TestPlaneFitsVertically(t *testing.T) {
	// At distance 5 with 50° FOV the visible half-height is 5*tan(25°) ≈ 2.33, so the
	// top edge of a 2-unit tall plane lands inside the frame.
	c := NewPerspectiveCamera(1)
	clip := c.ViewProjection().MulVec4(math.Vec4{0, 1, 0, 1})
	ndcY := clip[1] / clip[3]
	want := 1 / (5 * gomath.Tan(25*gomath.Pi/180))
	if gomath.Abs(float64(ndcY)-want) > 1e-4 {
		t.Errorf("ndc y = %v, want %v", ndcY, want)
	}
}
