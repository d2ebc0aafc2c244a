package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 960 {
		t.Errorf("expected width 960, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 540 {
		t.Errorf("expected height 540, got %d", cfg.Window.Height)
	}
	if !cfg.Window.Antialias {
		t.Error("expected antialias to be true by default")
	}

	if !cfg.Rotation.AutoRotate {
		t.Error("expected auto-rotate to be enabled by default")
	}
	if cfg.Rotation.StepDegrees != 45 {
		t.Errorf("expected 45 degree step, got %v", cfg.Rotation.StepDegrees)
	}

	if cfg.Ticket.ShowQR {
		t.Error("expected QR hidden by default")
	}
	if cfg.Ticket.TicketID == "" {
		t.Error("expected a sample ticket id")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  title: "Door scanner"
  width: 1280
  height: 720
  fullscreen: true
  antialias: false

ticket:
  event_name: "GopherCon"
  participant_name: "Ada Lovelace"
  ticket_id: "20240101-GOPH-XYZ123"
  show_qr: true

rotation:
  auto_rotate: false
  speed: 0.5
  step_degrees: 30

capture:
  dir: "/tmp/shots"

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Title != "Door scanner" {
		t.Errorf("expected title 'Door scanner', got %q", cfg.Window.Title)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.Antialias {
		t.Error("expected antialias to be false")
	}

	if cfg.Ticket.EventName != "GopherCon" {
		t.Errorf("expected event GopherCon, got %s", cfg.Ticket.EventName)
	}
	if cfg.Ticket.TicketID != "20240101-GOPH-XYZ123" {
		t.Errorf("unexpected ticket id %s", cfg.Ticket.TicketID)
	}
	if !cfg.Ticket.ShowQR {
		t.Error("expected show_qr to be true")
	}

	if cfg.Rotation.AutoRotate {
		t.Error("expected auto_rotate to be false")
	}
	if cfg.Rotation.Speed != 0.5 {
		t.Errorf("expected speed 0.5, got %v", cfg.Rotation.Speed)
	}
	if cfg.Rotation.StepDegrees != 30 {
		t.Errorf("expected step 30, got %v", cfg.Rotation.StepDegrees)
	}

	if cfg.Capture.Dir != "/tmp/shots" {
		t.Errorf("expected capture dir /tmp/shots, got %s", cfg.Capture.Dir)
	}
	// Prefix untouched by the file keeps its default
	if cfg.Capture.Prefix != "ticket" {
		t.Errorf("expected default prefix, got %s", cfg.Capture.Prefix)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero width", func(c *Config) { c.Window.Width = 0 }, true},
		{"negative height", func(c *Config) { c.Window.Height = -1 }, true},
		{"negative speed", func(c *Config) { c.Rotation.Speed = -1 }, true},
		{"zero speed", func(c *Config) { c.Rotation.Speed = 0 }, false},
		{"zero step", func(c *Config) { c.Rotation.StepDegrees = 0 }, true},
		{"step too large", func(c *Config) { c.Rotation.StepDegrees = 270 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "ticket flags",
			setup: func() {
				*flagEvent = "Launch Party"
				*flagParticipant = "Grace Hopper"
				*flagTicketID = "20250101-LNCH-000001"
				*flagQR = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Ticket.EventName != "Launch Party" {
					t.Errorf("expected event 'Launch Party', got %s", cfg.Ticket.EventName)
				}
				if cfg.Ticket.ParticipantName != "Grace Hopper" {
					t.Errorf("expected participant 'Grace Hopper', got %s", cfg.Ticket.ParticipantName)
				}
				if cfg.Ticket.TicketID != "20250101-LNCH-000001" {
					t.Errorf("unexpected ticket id %s", cfg.Ticket.TicketID)
				}
				if !cfg.Ticket.ShowQR {
					t.Error("expected show_qr with qr flag")
				}
			},
			teardown: func() {
				*flagEvent = ""
				*flagParticipant = ""
				*flagTicketID = ""
				*flagQR = false
			},
		},
		{
			name:  "no-rotate flag",
			setup: func() { *flagNoRotate = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Rotation.AutoRotate {
					t.Error("expected auto-rotate off with no-rotate flag")
				}
			},
			teardown: func() { *flagNoRotate = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("rotation:\n  speed: -2\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected validation error for negative speed")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Ticket.EventName = "Saved Event"
	cfg.Rotation.Speed = 2.5
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Ticket.EventName != "Saved Event" || loaded.Rotation.Speed != 2.5 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestSaveToConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)

	cfg := Default()
	cfg.Ticket.TicketID = "SAVED-ID"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, filepath.Join(ConfigDir(), "config.yaml")); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Ticket.TicketID != "SAVED-ID" {
		t.Errorf("ticket id = %q, want SAVED-ID", loaded.Ticket.TicketID)
	}
}
