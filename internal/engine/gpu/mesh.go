package gpu

import "github.com/Faultbox/ticket3d/pkg/math"

// Vertex is an interleaved mesh vertex.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	U, V     float32
}

// MeshData is an indexed triangle list.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint16
}

// PlaneMesh builds a width×height rectangle centered on the origin in the XY plane,
// facing +Z. Texture coordinate (0,0) is the top-left corner so image row 0 maps to
// the top edge.
func PlaneMesh(width, height float32) MeshData {
	hw, hh := width/2, height/2
	n := math.Vec3{X: 0, Y: 0, Z: 1}
	return MeshData{
		Vertices: []Vertex{
			{Position: math.Vec3{X: -hw, Y: hh}, Normal: n, U: 0, V: 0},
			{Position: math.Vec3{X: hw, Y: hh}, Normal: n, U: 1, V: 0},
			{Position: math.Vec3{X: -hw, Y: -hh}, Normal: n, U: 0, V: 1},
			{Position: math.Vec3{X: hw, Y: -hh}, Normal: n, U: 1, V: 1},
		},
		// Counter-clockwise seen from +Z
		Indices: []uint16{0, 2, 1, 2, 3, 1},
	}
}

// Floats flattens the vertices as position(3) normal(3) uv(2).
func (m MeshData) Floats() []float32 {
	out := make([]float32, 0, len(m.Vertices)*8)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
			v.U, v.V)
	}
	return out
}
