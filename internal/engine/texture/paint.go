package texture

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa is the control point distance for a quarter circle drawn as a cubic Bézier.
const kappa = 0.5522847498

// painter fills vector paths over an RGBA surface with source-over blending.
// Each shape is rasterized only over its own bounding box.
type painter struct {
	dst    *image.RGBA
	r      *vector.Rasterizer
	clip   image.Rectangle // dst area covered by the current shape
	ox, oy float32         // clip.Min in path coordinates
}

func newPainter(dst *image.RGBA) *painter {
	return &painter{dst: dst, r: vector.NewRasterizer(0, 0)}
}

// begin prepares the rasterizer for a shape inside [x0,x1]×[y0,y1]. It reports
// false when the shape misses the surface.
func (p *painter) begin(x0, y0, x1, y1 float32) bool {
	box := image.Rect(
		int(math.Floor(float64(x0)))-1, int(math.Floor(float64(y0)))-1,
		int(math.Ceil(float64(x1)))+1, int(math.Ceil(float64(y1)))+1,
	)
	p.clip = box.Intersect(p.dst.Bounds())
	if p.clip.Empty() {
		return false
	}
	p.ox, p.oy = float32(p.clip.Min.X), float32(p.clip.Min.Y)
	p.r.Reset(p.clip.Dx(), p.clip.Dy())
	p.r.DrawOp = draw.Over
	return true
}

// fill composites the accumulated path with c.
func (p *painter) fill(c color.Color) {
	p.r.Draw(p.dst, p.clip, image.NewUniform(c), image.Point{})
}

func (p *painter) moveTo(x, y float32) { p.r.MoveTo(x-p.ox, y-p.oy) }
func (p *painter) lineTo(x, y float32) { p.r.LineTo(x-p.ox, y-p.oy) }

func (p *painter) cubeTo(bx, by, cx, cy, dx, dy float32) {
	p.r.CubeTo(bx-p.ox, by-p.oy, cx-p.ox, cy-p.oy, dx-p.ox, dy-p.oy)
}

// circle adds a closed circle. ccw reverses the winding so an inner circle cuts a hole.
func (p *painter) circle(cx, cy, radius float32, ccw bool) {
	k := radius * kappa
	if !ccw {
		p.moveTo(cx+radius, cy)
		p.cubeTo(cx+radius, cy+k, cx+k, cy+radius, cx, cy+radius)
		p.cubeTo(cx-k, cy+radius, cx-radius, cy+k, cx-radius, cy)
		p.cubeTo(cx-radius, cy-k, cx-k, cy-radius, cx, cy-radius)
		p.cubeTo(cx+k, cy-radius, cx+radius, cy-k, cx+radius, cy)
	} else {
		p.moveTo(cx+radius, cy)
		p.cubeTo(cx+radius, cy-k, cx+k, cy-radius, cx, cy-radius)
		p.cubeTo(cx-k, cy-radius, cx-radius, cy-k, cx-radius, cy)
		p.cubeTo(cx-radius, cy+k, cx-k, cy+radius, cx, cy+radius)
		p.cubeTo(cx+k, cy+radius, cx+radius, cy+k, cx+radius, cy)
	}
	p.r.ClosePath()
}

// roundRect adds a closed rounded rectangle with its top-left corner at (x, y).
func (p *painter) roundRect(x, y, w, h, radius float32, ccw bool) {
	radius = float32(math.Min(float64(radius), math.Min(float64(w), float64(h))/2))
	if radius < 0 {
		radius = 0
	}
	k := radius * kappa
	x1, y1 := x+w, y+h

	if !ccw {
		p.moveTo(x+radius, y)
		p.lineTo(x1-radius, y)
		p.cubeTo(x1-radius+k, y, x1, y+radius-k, x1, y+radius)
		p.lineTo(x1, y1-radius)
		p.cubeTo(x1, y1-radius+k, x1-radius+k, y1, x1-radius, y1)
		p.lineTo(x+radius, y1)
		p.cubeTo(x+radius-k, y1, x, y1-radius+k, x, y1-radius)
		p.lineTo(x, y+radius)
		p.cubeTo(x, y+radius-k, x+radius-k, y, x+radius, y)
	} else {
		p.moveTo(x+radius, y)
		p.cubeTo(x+radius-k, y, x, y+radius-k, x, y+radius)
		p.lineTo(x, y1-radius)
		p.cubeTo(x, y1-radius+k, x+radius-k, y1, x+radius, y1)
		p.lineTo(x1-radius, y1)
		p.cubeTo(x1-radius+k, y1, x1, y1-radius+k, x1, y1-radius)
		p.lineTo(x1, y+radius)
		p.cubeTo(x1, y+radius-k, x1-radius+k, y, x1-radius, y)
	}
	p.r.ClosePath()
}

// FillCircle paints a solid disc.
func (p *painter) FillCircle(cx, cy, radius float32, c color.Color) {
	if !p.begin(cx-radius, cy-radius, cx+radius, cy+radius) {
		return
	}
	p.circle(cx, cy, radius, false)
	p.fill(c)
}

// StrokeCircle paints a ring of the given line width centered on radius.
func (p *painter) StrokeCircle(cx, cy, radius, width float32, c color.Color) {
	outer := radius + width/2
	if !p.begin(cx-outer, cy-outer, cx+outer, cy+outer) {
		return
	}
	p.circle(cx, cy, outer, false)
	p.circle(cx, cy, radius-width/2, true)
	p.fill(c)
}

// StrokeRoundRect strokes a rounded rectangle with the line centered on its edge.
func (p *painter) StrokeRoundRect(x, y, w, h, radius, width float32, c color.Color) {
	hw := width / 2
	if !p.begin(x-hw, y-hw, x+w+hw, y+h+hw) {
		return
	}
	p.roundRect(x-hw, y-hw, w+width, h+width, radius+hw, false)
	p.roundRect(x+hw, y+hw, w-width, h-width, radius-hw, true)
	p.fill(c)
}

// Line paints a horizontal or sloped segment as a quad of the given width.
func (p *painter) Line(x0, y0, x1, y1, width float32, c color.Color) {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	if !p.begin(
		min(x0+nx, x0-nx, x1+nx, x1-nx), min(y0+ny, y0-ny, y1+ny, y1-ny),
		max(x0+nx, x0-nx, x1+nx, x1-nx), max(y0+ny, y0-ny, y1+ny, y1-ny),
	) {
		return
	}
	p.moveTo(x0+nx, y0+ny)
	p.lineTo(x1+nx, y1+ny)
	p.lineTo(x1-nx, y1-ny)
	p.lineTo(x0-nx, y0-ny)
	p.r.ClosePath()
	p.fill(c)
}

// white returns white at the given opacity as a non-premultiplied color.
func white(alpha float64) color.NRGBA {
	return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: opacity(alpha)}
}

func opacity(alpha float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, alpha)) * 255))
}
