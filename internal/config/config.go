// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Ticket   TicketConfig   `yaml:"ticket"`
	Rotation RotationConfig `yaml:"rotation"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display and rendering settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Antialias  bool   `yaml:"antialias"`
}

// TicketConfig holds the ticket shown when the viewer starts.
type TicketConfig struct {
	EventName       string `yaml:"event_name"`
	ParticipantName string `yaml:"participant_name"`
	TicketID        string `yaml:"ticket_id"`
	ShowQR          bool   `yaml:"show_qr"`
}

// RotationConfig holds auto-rotation and manual step settings.
type RotationConfig struct {
	AutoRotate  bool    `yaml:"auto_rotate"`
	Speed       float64 `yaml:"speed"`        // radians per second
	StepDegrees float64 `yaml:"step_degrees"` // manual rotate-left/right step
}

// CaptureConfig holds snapshot settings.
type CaptureConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "RSVPY Ticket",
			Width:     960,
			Height:    540,
			VSync:     true,
			Antialias: true,
		},
		Ticket: TicketConfig{
			EventName:       "Dev Conf 2023",
			ParticipantName: "Jane Doe",
			TicketID:        "20230615-EVT1-AB12CD",
			ShowQR:          false,
		},
		Rotation: RotationConfig{
			AutoRotate:  true,
			Speed:       1.2,
			StepDegrees: 45,
		},
		Capture: CaptureConfig{
			Dir:    "screenshots",
			Prefix: "ticket",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
