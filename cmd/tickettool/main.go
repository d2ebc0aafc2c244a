// tickettool renders RSVPY tickets and their QR codes without opening a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Faultbox/ticket3d/internal/config"
	"github.com/Faultbox/ticket3d/internal/engine/capture"
	"github.com/Faultbox/ticket3d/internal/qr"
	"github.com/Faultbox/ticket3d/internal/ticket"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "compose", "surface":
		cmdCompose(args)
	case "render":
		cmdRender(args)
	case "qr":
		cmdQR(args)
	case "id":
		cmdID(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tickettool - RSVPY ticket utility

Usage:
  tickettool <command> [options]

Commands:
  compose   Write the flat 1024x512 ticket surface as PNG
  render    Render the 3D ticket at an angle without a window
  qr        Write the QR glyph for a ticket id
  id        Generate a ticket id
  config    Write the default viewer config file

Examples:
  tickettool compose -event "Dev Conf 2023" -participant "jane doe" -qr -o ticket.png
  tickettool render -angle 30 -width 800 -height 450 -o ticket3d.png
  tickettool qr -id 20230615-EVT1-AB12CD -o code.png
  tickettool id -date 2023-06-15 -event EVT1
  tickettool config -o ./config.yaml`)
}

// ticketFlags registers the flags shared by compose and render.
func ticketFlags(fs *flag.FlagSet) (*ticket.Request, *uint64) {
	req := &ticket.Request{}
	fs.StringVar(&req.EventName, "event", "Dev Conf 2023", "Event name")
	fs.StringVar(&req.ParticipantName, "participant", "Jane Doe", "Participant name")
	fs.StringVar(&req.TicketID, "id", "20230615-EVT1-AB12CD", "Ticket id")
	fs.BoolVar(&req.ShowQR, "qr", false, "Show the QR code instead of the ornament")
	seed := fs.Uint64("seed", 0, "Speckle seed (0 = random)")
	return req, seed
}

func cmdCompose(args []string) {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	req, seed := ticketFlags(fs)
	output := fs.String("o", "ticket.png", "Output PNG")
	fs.Parse(args)

	img, err := composeSurface(context.Background(), *req, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := capture.WritePNG(*output, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", *output, img.Bounds().Dx(), img.Bounds().Dy())
}

func cmdRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	req, seed := ticketFlags(fs)
	angle := fs.Float64("angle", 0, "Rotation in degrees")
	width := fs.Int("width", 800, "Image width")
	height := fs.Int("height", 450, "Image height")
	output := fs.String("o", "ticket3d.png", "Output PNG")
	fs.Parse(args)

	img, err := renderTicket(context.Background(), *req, renderOptions{
		Seed:   *seed,
		Angle:  *angle,
		Width:  *width,
		Height: *height,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := capture.WritePNG(*output, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", *output, img.Bounds().Dx(), img.Bounds().Dy())
}

func cmdQR(args []string) {
	fs := flag.NewFlagSet("qr", flag.ExitOnError)
	id := fs.String("id", "", "Ticket id")
	output := fs.String("o", "qr.png", "Output PNG")
	timeout := fs.Duration("timeout", 5*time.Second, "Give up after this long")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var res qr.Result
	select {
	case res = <-qr.Async(ctx, qr.NewEncoder(), qr.Payload(*id)):
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", res.Err)
		os.Exit(1)
	}

	if err := capture.WritePNG(*output, res.Image); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s for %q\n", *output, qr.Payload(*id))
}

func cmdID(args []string) {
	fs := flag.NewFlagSet("id", flag.ExitOnError)
	date := fs.String("date", "", "Event date, YYYY-MM-DD (default today)")
	event := fs.String("event", "EVT1", "Event identifier")
	count := fs.Int("n", 1, "Number of ids")
	fs.Parse(args)

	day, err := parseDate(*date, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for range *count {
		fmt.Println(ticket.GenerateID(day, *event, nil))
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default: the user config directory)")
	fs.Parse(args)

	path, err := writeDefaultConfig(config.Default(), *output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
