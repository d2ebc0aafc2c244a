// Package qrtest decodes QR glyphs so tests can check what a ticket actually encodes.
package qrtest

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Decode reads the single, axis-aligned QR symbol in img.
// img may be a sub-image; it is copied to an origin-based grayscale bitmap first.
func Decode(img image.Image) (string, error) {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	bmp, err := gozxing.NewBinaryBitmapFromImage(gray)
	if err != nil {
		return "", fmt.Errorf("binarizing: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_PURE_BARCODE: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	return result.GetText(), nil
}
