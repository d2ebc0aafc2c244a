// Package ticket defines the values a ticket render is driven by.
package ticket

import "fmt"

// Request is the full input of one ticket render.
//
// Empty strings are valid and render as empty regions. Rotation is in radians
// and unbounded; the renderer reduces it modulo 2π.
type Request struct {
	EventName       string
	ParticipantName string
	TicketID        string
	Rotation        float64
	ShowQR          bool
}

// Content is the part of a Request that determines the ticket artwork.
// Two requests with equal Content share a surface; only Rotation differs.
type Content struct {
	EventName       string
	ParticipantName string
	TicketID        string
	ShowQR          bool
}

// Content returns the artwork-relevant fields of r.
func (r Request) Content() Content {
	return Content{
		EventName:       r.EventName,
		ParticipantName: r.ParticipantName,
		TicketID:        r.TicketID,
		ShowQR:          r.ShowQR,
	}
}

// Request returns a request for c at the given rotation.
func (c Content) Request(rotation float64) Request {
	return Request{
		EventName:       c.EventName,
		ParticipantName: c.ParticipantName,
		TicketID:        c.TicketID,
		Rotation:        rotation,
		ShowQR:          c.ShowQR,
	}
}

// String implements fmt.Stringer for log fields.
func (c Content) String() string {
	return fmt.Sprintf("%q/%q/%q qr=%t", c.EventName, c.ParticipantName, c.TicketID, c.ShowQR)
}
