// Package lighting provides the light sources of the ticket scene.
package lighting

import "github.com/Faultbox/ticket3d/pkg/math"

// White is the color used by both ticket lights.
var White = [3]float32{1, 1, 1}

// Ambient light illuminates every surface equally.
type Ambient struct {
	Color     [3]float32 // RGB color (0-1 range)
	Intensity float32
}

// Directional light shines from Position towards Target, like a distant sun.
type Directional struct {
	Color     [3]float32
	Intensity float32
	Position  math.Vec3
	Target    math.Vec3
}

// NewAmbient returns the ticket's ambient light: white at 0.6.
func NewAmbient() Ambient {
	return Ambient{Color: White, Intensity: 0.6}
}

// NewDirectional returns the ticket's key light: white at 0.8 from (0, 1, 5) towards the origin.
func NewDirectional() Directional {
	return Directional{
		Color:     White,
		Intensity: 0.8,
		Position:  math.Vec3{X: 0, Y: 1, Z: 5},
	}
}

// Direction returns the normalized vector pointing from the target towards the light.
func (d Directional) Direction() math.Vec3 {
	return d.Position.Sub(d.Target).Normalize()
}

// Radiance returns the light color scaled by intensity.
func (a Ambient) Radiance() [3]float32 {
	return scale(a.Color, a.Intensity)
}

// Radiance returns the light color scaled by intensity.
func (d Directional) Radiance() [3]float32 {
	return scale(d.Color, d.Intensity)
}

// Lambert returns the per-channel light reaching a surface with normal n.
// Both faces of the surface are lit, so the sign of n does not matter.
func Lambert(a Ambient, d Directional, n math.Vec3) [3]float32 {
	ndotl := n.Normalize().Dot(d.Direction())
	if ndotl < 0 {
		ndotl = -ndotl
	}
	amb, dir := a.Radiance(), d.Radiance()
	return [3]float32{
		amb[0] + dir[0]*ndotl,
		amb[1] + dir[1]*ndotl,
		amb[2] + dir[2]*ndotl,
	}
}

func scale(c [3]float32, s float32) [3]float32 {
	return [3]float32{c[0] * s, c[1] * s, c[2] * s}
}
