// Package qr turns ticket identifiers into scannable QR glyphs.
package qr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
)

// PayloadPrefix namespaces ticket codes against unrelated QR scanners.
const PayloadPrefix = "RSVPY-TICKET:"

// DefaultSize is the glyph edge length in pixels.
const DefaultSize = 180

// ErrGlyphTooSmall is reported when the symbol has more modules than the glyph has pixels.
var ErrGlyphTooSmall = errors.New("qr symbol does not fit the glyph size")

// Payload returns the string encoded for a ticket id.
func Payload(ticketID string) string {
	return PayloadPrefix + ticketID
}

// EncodingError reports a payload that could not be turned into a glyph.
type EncodingError struct {
	Payload string
	Err     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("qr: encoding %d-byte payload: %v", len(e.Payload), e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Encoder produces a QR glyph for a payload.
type Encoder interface {
	Encode(ctx context.Context, payload string) (image.Image, error)
}

// SkipEncoder encodes with github.com/skip2/go-qrcode.
// Modules are pure black on pure white; the caller cannot change the colors.
type SkipEncoder struct {
	Size   int                  // glyph edge in pixels
	Margin int                  // quiet zone in modules
	Level  qrcode.RecoveryLevel // error correction
}

// NewEncoder returns an encoder with the ticket defaults: 180px, one-module quiet zone,
// medium error correction.
func NewEncoder() *SkipEncoder {
	return &SkipEncoder{
		Size:   DefaultSize,
		Margin: 1,
		Level:  qrcode.Medium,
	}
}

// Encode builds the glyph. Modules are scaled by a whole number of pixels and
// centered, so the surrounding white only ever widens the quiet zone.
func (e *SkipEncoder) Encode(ctx context.Context, payload string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	code, err := qrcode.New(payload, e.Level)
	if err != nil {
		return nil, &EncodingError{Payload: payload, Err: err}
	}
	code.DisableBorder = true
	bits := code.Bitmap()

	modules := len(bits) + 2*e.Margin
	scale := e.Size / modules
	if scale < 1 {
		return nil, &EncodingError{Payload: payload, Err: ErrGlyphTooSmall}
	}

	img := image.NewGray(image.Rect(0, 0, e.Size, e.Size))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	offset := (e.Size-modules*scale)/2 + e.Margin*scale
	for y, row := range bits {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0 := offset + x*scale
			y0 := offset + y*scale
			for py := y0; py < y0+scale; py++ {
				for px := x0; px < x0+scale; px++ {
					img.SetGray(px, py, color.Gray{Y: 0})
				}
			}
		}
	}

	return img, nil
}

// Result is the outcome of an asynchronous encode.
type Result struct {
	Image image.Image
	Err   error
}

// Async runs enc on its own goroutine. The channel is buffered, so a caller that
// stops listening (because ctx was cancelled) never blocks the encoder.
func Async(ctx context.Context, enc Encoder, payload string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		img, err := enc.Encode(ctx, payload)
		ch <- Result{Image: img, Err: err}
	}()
	return ch
}
