package texture

import (
	"context"
	"errors"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/ticket3d/internal/logger"
	"github.com/Faultbox/ticket3d/internal/qr"
	"github.com/Faultbox/ticket3d/internal/ticket"
)

// Build composes the surface for req, encoding the QR glyph first when req.ShowQR is set.
// The encode runs on the calling goroutine.
//
// An encoder failure is logged and the ornament is painted instead, so Build only
// returns an error when ctx is done before the surface is ready.
func (c *Compositor) Build(ctx context.Context, req ticket.Request, enc qr.Encoder) (*image.RGBA, error) {
	var glyph image.Image
	if req.ShowQR && enc != nil {
		img, err := enc.Encode(ctx, qr.Payload(req.TicketID))
		switch {
		case err == nil:
			glyph = img
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			logger.Warn("QR encoding failed, drawing ornament",
				zap.String("ticket_id", req.TicketID),
				zap.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Compose(req, glyph), nil
}
