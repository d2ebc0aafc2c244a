package texture

import (
	"image"
	"image/color"
	"image/draw"
)

// Placeholder surface dimensions.
const (
	PlaceholderWidth  = 512
	PlaceholderHeight = 256
)

var placeholderBase = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}

// Placeholder paints the loading surface shown until the first ticket is composed.
func (c *Compositor) Placeholder() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, PlaceholderWidth, PlaceholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBase), image.Point{}, draw.Src)
	draw.Draw(img, img.Bounds(), image.NewUniform(ornamentFill), image.Point{}, draw.Over)

	c.text(img, faceRef{FamilyBold, 24}, "RSVPY TICKET", PlaceholderWidth/2, 50, AlignCenter, color.White)
	c.text(img, faceRef{FamilyRegular, 16}, "Loading...", PlaceholderWidth/2, PlaceholderHeight/2, AlignCenter, color.White)
	return img
}
