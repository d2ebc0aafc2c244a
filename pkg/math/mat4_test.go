package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestMulVec4Translate(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.MulVec4(Point(Vec3{1, 2, 3}))

	want := Vec4{11, 22, 33, 1}
	if got != want {
		t.Errorf("MulVec4: got %v, want %v", got, want)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2)) // 90 degrees
	result := m.TransformDirection(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result.X) > 0.001 || abs(result.Y) > 0.001 || abs(result.Z+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(1.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Perspective(fov, aspect, near, far)

	// Should be a valid projection matrix (not identity)
	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	// Element [15] should be 0 for perspective projection
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// Element [11] should be -1 for perspective projection
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 5}
	center := Vec3{0, 0, 0}
	up := Vec3{0, 1, 0}

	m := LookAt(eye, center, up)

	// The eye lands on the origin of view space
	p := m.MulVec4(Point(eye))
	if abs(p[0]) > 0.001 || abs(p[1]) > 0.001 || abs(p[2]) > 0.001 {
		t.Errorf("LookAt eye: got %v, want origin", p)
	}
	// The target sits 5 units down -Z
	c := m.MulVec4(Point(center))
	if abs(c[2]+5) > 0.001 {
		t.Errorf("LookAt center z: got %f, want -5", c[2])
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{2 * math.Pi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		got := WrapAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 2*math.Pi {
			t.Errorf("WrapAngle(%v) = %v out of [0, 2pi)", tt.in, got)
		}
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
