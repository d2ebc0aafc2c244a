// Package texture paints the ticket artwork and the loading placeholder.
package texture

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/ticket3d/internal/ticket"
)

// Surface dimensions in pixels.
const (
	SurfaceWidth  = 1024
	SurfaceHeight = 512
)

// Layout of the ticket surface.
const (
	marginX       = 80
	headerY       = 80
	dividerY      = 100
	dividerInset  = 60
	eventY        = 160
	participantY  = 210
	qrSize        = 180
	qrTop         = 270
	qrCaptionY    = 470
	ornamentY     = 350
	ornamentR     = 80
	ringR         = 60
	ornamentTextY = 450
	borderWidth   = 10
	borderRadius  = 40
	speckleCount  = 50

	BrandMark       = "RSVPY"
	QRCaption       = "Scan this code at event entry"
	OrnamentCaption = "Click the QR button to reveal your entry code"
)

var (
	gradientStart = color.RGBA{0x29, 0x0b, 0x5a, 0xff}
	gradientEnd   = color.RGBA{0x00, 0x0e, 0x30, 0xff}
	ornamentFill  = color.NRGBA{R: 138, G: 43, B: 226, A: opacity(0.2)}
)

// QRRect is the region of the surface the QR glyph occupies when shown.
func QRRect() image.Rectangle {
	x := (SurfaceWidth - qrSize) / 2
	return image.Rect(x, qrTop, x+qrSize, qrTop+qrSize)
}

// Compositor paints ticket surfaces. It is safe for concurrent use; calls are serialized.
type Compositor struct {
	mu     sync.Mutex
	seed   *uint64
	faces  *faceCache
	ticket ticketFaces

	composed atomic.Int64
}

type ticketFaces struct {
	brand, id, event, participant, caption, ornament faceRef
}

type faceRef struct {
	family int
	size   float64
}

var defaultFaces = ticketFaces{
	brand:       faceRef{FamilyBold, 48},
	id:          faceRef{FamilyMono, 16},
	event:       faceRef{FamilyBold, 40},
	participant: faceRef{FamilyRegular, 32},
	caption:     faceRef{FamilyRegular, 16},
	ornament:    faceRef{FamilyRegular, 18},
}

// NewCompositor returns a compositor whose speckles differ on every call.
func NewCompositor() (*Compositor, error) {
	faces, err := newFaceCache()
	if err != nil {
		return nil, err
	}
	c := &Compositor{faces: faces, ticket: defaultFaces}

	// Warm every face so Compose cannot fail later.
	for _, ref := range []faceRef{
		c.ticket.brand, c.ticket.id, c.ticket.event,
		c.ticket.participant, c.ticket.caption, c.ticket.ornament,
	} {
		if _, err := faces.face(ref.family, ref.size); err != nil {
			faces.Close()
			return nil, err
		}
	}
	return c, nil
}

// NewSeededCompositor returns a compositor that scatters the same speckles on every call.
func NewSeededCompositor(seed uint64) (*Compositor, error) {
	c, err := NewCompositor()
	if err != nil {
		return nil, err
	}
	c.seed = &seed
	return c, nil
}

// Composed reports how many surfaces have been painted.
func (c *Compositor) Composed() int64 {
	return c.composed.Load()
}

// Close releases the font faces.
func (c *Compositor) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faces.Close()
}

// Compose paints the ticket for req. When req.ShowQR is set and glyph is not nil the
// glyph is placed in QRRect; otherwise the ornament is drawn instead.
func (c *Compositor) Compose(req ticket.Request, glyph image.Image) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.composed.Add(1)

	img := image.NewRGBA(image.Rect(0, 0, SurfaceWidth, SurfaceHeight))
	p := newPainter(img)

	paintGradient(img)
	c.paintSpeckles(p)

	p.StrokeRoundRect(borderWidth/2, borderWidth/2,
		SurfaceWidth-borderWidth, SurfaceHeight-borderWidth,
		borderRadius, borderWidth, white(0.2))

	c.text(img, c.ticket.brand, BrandMark, marginX, headerY, AlignLeft, white(0.9))
	c.text(img, c.ticket.id, req.TicketID, SurfaceWidth-marginX, headerY, AlignRight, white(0.6))

	p.Line(dividerInset, dividerY, SurfaceWidth-dividerInset, dividerY, 2, white(0.1))

	c.text(img, c.ticket.event, req.EventName, SurfaceWidth/2, eventY, AlignCenter, color.White)
	c.text(img, c.ticket.participant, req.ParticipantName, SurfaceWidth/2, participantY, AlignCenter, white(0.9))

	if req.ShowQR && glyph != nil {
		drawGlyph(img, glyph)
		c.text(img, c.ticket.caption, QRCaption, SurfaceWidth/2, qrCaptionY, AlignCenter, white(0.6))
	} else {
		p.FillCircle(SurfaceWidth/2, ornamentY, ornamentR, ornamentFill)
		p.StrokeCircle(SurfaceWidth/2, ornamentY, ringR, 3, white(0.15))
		c.text(img, c.ticket.ornament, OrnamentCaption, SurfaceWidth/2, ornamentTextY, AlignCenter, white(0.6))
	}

	return img
}

func (c *Compositor) text(dst *image.RGBA, ref faceRef, s string, x, y float64, align Alignment, col color.Color) {
	face, err := c.faces.face(ref.family, ref.size)
	if err != nil {
		return
	}
	drawText(dst, face, s, x, y, align, col)
}

func (c *Compositor) paintSpeckles(p *painter) {
	var r *rand.Rand
	if c.seed != nil {
		r = rand.New(rand.NewPCG(*c.seed, *c.seed^0x9e3779b97f4a7c15))
	} else {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	speck := white(0.03)
	for range speckleCount {
		x := r.Float32() * SurfaceWidth
		y := r.Float32() * SurfaceHeight
		radius := 1 + r.Float32()*2
		p.FillCircle(x, y, radius, speck)
	}
}

// paintGradient fills img along the diagonal from the top-left to the bottom-right corner.
func paintGradient(img *image.RGBA) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	norm := w*w + h*h

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := ((float64(x)+0.5)*w + (float64(y)+0.5)*h) / norm
			i := img.PixOffset(x, y)
			img.Pix[i+0] = lerp(gradientStart.R, gradientEnd.R, t)
			img.Pix[i+1] = lerp(gradientStart.G, gradientEnd.G, t)
			img.Pix[i+2] = lerp(gradientStart.B, gradientEnd.B, t)
			img.Pix[i+3] = 0xff
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// drawGlyph copies the QR glyph into QRRect, scaling only when its size differs.
func drawGlyph(dst *image.RGBA, glyph image.Image) {
	r := QRRect()
	gb := glyph.Bounds()
	if gb.Dx() == r.Dx() && gb.Dy() == r.Dy() {
		draw.Draw(dst, r, glyph, gb.Min, draw.Src)
		return
	}
	xdraw.NearestNeighbor.Scale(dst, r, glyph, gb, xdraw.Src, nil)
}
