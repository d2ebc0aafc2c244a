package texture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Font families used on the ticket.
const (
	FamilyRegular = iota
	FamilyBold
	FamilyMono
)

var (
	parseOnce   sync.Once
	parsedFonts [3]*opentype.Font
	parseErr    error
)

func loadFonts() ([3]*opentype.Font, error) {
	parseOnce.Do(func() {
		for i, ttf := range [][]byte{goregular.TTF, gobold.TTF, gomono.TTF} {
			f, err := opentype.Parse(ttf)
			if err != nil {
				parseErr = fmt.Errorf("parse font %d: %w", i, err)
				return
			}
			parsedFonts[i] = f
		}
	})
	return parsedFonts, parseErr
}

type faceKey struct {
	family int
	size   float64
}

// faceCache holds font faces by family and pixel size.
// Faces are not safe for concurrent use; the owner serializes access.
type faceCache struct {
	fonts [3]*opentype.Font
	faces map[faceKey]font.Face
}

func newFaceCache() (*faceCache, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &faceCache{fonts: fonts, faces: make(map[faceKey]font.Face)}, nil
}

func (c *faceCache) face(family int, size float64) (font.Face, error) {
	key := faceKey{family, size}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.fonts[family], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %d@%.0fpx: %w", family, size, err)
	}
	c.faces[key] = f
	return f, nil
}

func (c *faceCache) Close() {
	for k, f := range c.faces {
		f.Close()
		delete(c.faces, k)
	}
}

// Alignment of a text run relative to its anchor x.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// drawText draws s with its alphabetic baseline at y. Glyphs outside dst are clipped.
func drawText(dst *image.RGBA, face font.Face, s string, x, y float64, align Alignment, c color.Color) {
	if s == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}

	width := d.MeasureString(s)
	dot := fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
	switch align {
	case AlignCenter:
		dot.X -= width / 2
	case AlignRight:
		dot.X -= width
	}
	d.Dot = dot
	d.DrawString(s)
}
