package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagFullscreen  = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth       = flag.Int("width", 0, "Window width")
	flagHeight      = flag.Int("height", 0, "Window height")
	flagEvent       = flag.String("event", "", "Event name printed on the ticket")
	flagParticipant = flag.String("participant", "", "Participant name printed on the ticket")
	flagTicketID    = flag.String("id", "", "Ticket identifier (also the QR payload)")
	flagQR          = flag.Bool("qr", false, "Show the QR code on start")
	flagNoRotate    = flag.Bool("no-rotate", false, "Start with auto-rotation off")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagEvent != "" {
		cfg.Ticket.EventName = *flagEvent
	}
	if *flagParticipant != "" {
		cfg.Ticket.ParticipantName = *flagParticipant
	}
	if *flagTicketID != "" {
		cfg.Ticket.TicketID = *flagTicketID
	}
	if *flagQR {
		cfg.Ticket.ShowQR = true
	}
	if *flagNoRotate {
		cfg.Rotation.AutoRotate = false
	}
}
