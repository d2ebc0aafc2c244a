package softraster

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/ticket3d/internal/engine/gpu"
	"github.com/Faultbox/ticket3d/internal/engine/lighting"
	"github.com/Faultbox/ticket3d/pkg/math"
)

// screenVertex holds a vertex transformed to supersampled screen space.
type screenVertex struct {
	X, Y float64
	Z    float64 // NDC depth
	InvW float64
	U, V float64
}

// Render clears the surface and draws call.
func (d *Device) Render(call gpu.DrawCall) error {
	if d.released {
		return ErrReleased
	}
	geo, ok := call.Geometry.(*geometry)
	if !ok || geo == nil {
		return fmt.Errorf("softraster: geometry %T not created by this device", call.Geometry)
	}
	mat, ok := call.Material.(*material)
	if !ok || mat == nil {
		return fmt.Errorf("softraster: material %T not created by this device", call.Material)
	}
	if geo.released || mat.released {
		return ErrReleased
	}

	var tex *texture
	if m := mat.desc.Map; m != nil {
		t, ok := m.(*texture)
		if !ok {
			return fmt.Errorf("softraster: texture %T not created by this device", m)
		}
		if t.released {
			return errors.New("softraster: material map was released")
		}
		tex = t
	}

	d.clear()

	mvp := call.Projection.Mul(call.View).Mul(call.Model)
	w := float64(d.color.Bounds().Dx())
	h := float64(d.color.Bounds().Dy())

	idx := geo.mesh.Indices
	for i := 0; i+2 < len(idx); i += 3 {
		var sv [3]screenVertex
		visible := true
		for k := range 3 {
			v := geo.mesh.Vertices[idx[i+k]]
			clip := mvp.MulVec4(math.Point(v.Position))
			if clip[3] <= 1e-6 {
				visible = false
				break
			}
			invW := 1 / float64(clip[3])
			sv[k] = screenVertex{
				X:    (float64(clip[0])*invW + 1) * 0.5 * w,
				Y:    (1 - float64(clip[1])*invW) * 0.5 * h,
				Z:    float64(clip[2]) * invW,
				InvW: invW,
				U:    float64(v.U),
				V:    float64(v.V),
			}
		}
		if !visible {
			continue
		}

		// Face normal in world space drives flat Lambert shading.
		p0 := geo.mesh.Vertices[idx[i]].Position
		p1 := geo.mesh.Vertices[idx[i+1]].Position
		p2 := geo.mesh.Vertices[idx[i+2]].Position
		normal := call.Model.TransformDirection(p1.Sub(p0).Cross(p2.Sub(p0)))
		light := lighting.Lambert(call.Ambient, call.Directional, normal)

		d.drawTriangle(sv, tex, light, mat.desc.DoubleSided)
	}

	d.resolve()
	d.stats.Frames++
	return nil
}

func (d *Device) clear() {
	var bg [4]uint8
	if !d.cfg.Alpha {
		bg = [4]uint8{0, 0, 0, 0xff}
	}
	pix := d.color.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = bg[0], bg[1], bg[2], bg[3]
	}
	for i := range d.depth {
		d.depth[i] = gomath.MaxFloat32
	}
}

// drawTriangle fills one triangle with edge functions over its bounding box.
func (d *Device) drawTriangle(sv [3]screenVertex, tex *texture, light [3]float32, doubleSided bool) {
	area := edge(sv[0], sv[1], sv[2].X, sv[2].Y)
	if area == 0 {
		return
	}
	// Screen Y points down, so a counter-clockwise triangle has negative area here.
	if area > 0 && !doubleSided {
		return
	}
	d.stats.Triangles++

	width := d.color.Bounds().Dx()
	height := d.color.Bounds().Dy()
	minX := max(0, int(gomath.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := min(width-1, int(gomath.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := max(0, int(gomath.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := min(height-1, int(gomath.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			b0 := edge(sv[1], sv[2], px, py) / area
			b1 := edge(sv[2], sv[0], px, py) / area
			b2 := 1 - b0 - b1
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			z := b0*sv[0].Z + b1*sv[1].Z + b2*sv[2].Z
			di := y*width + x
			if float32(z) >= d.depth[di] {
				continue
			}
			d.depth[di] = float32(z)

			// Perspective-correct texture coordinates
			w0, w1, w2 := b0*sv[0].InvW, b1*sv[1].InvW, b2*sv[2].InvW
			sum := w0 + w1 + w2
			u := (w0*sv[0].U + w1*sv[1].U + w2*sv[2].U) / sum
			v := (w0*sv[0].V + w1*sv[1].V + w2*sv[2].V) / sum

			r, g, b, a := uint8(0xff), uint8(0xff), uint8(0xff), uint8(0xff)
			if tex != nil {
				r, g, b, a = tex.sample(u, v)
			}

			i := d.color.PixOffset(x, y)
			d.color.Pix[i+0] = shade(r, light[0])
			d.color.Pix[i+1] = shade(g, light[1])
			d.color.Pix[i+2] = shade(b, light[2])
			d.color.Pix[i+3] = a
			d.stats.Fragments++
		}
	}
}

// edge is twice the signed area of (a, b, p).
func edge(a, b screenVertex, px, py float64) float64 {
	return (b.X-a.X)*(py-a.Y) - (b.Y-a.Y)*(px-a.X)
}

// sample returns the nearest texel, clamping coordinates to the edge.
func (t *texture) sample(u, v float64) (r, g, b, a uint8) {
	bw, bh := t.img.Bounds().Dx(), t.img.Bounds().Dy()
	x := min(bw-1, max(0, int(u*float64(bw))))
	y := min(bh-1, max(0, int(v*float64(bh))))
	i := t.img.PixOffset(x, y)
	p := t.img.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}

func shade(c uint8, l float32) uint8 {
	v := float32(c) * l
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
