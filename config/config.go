package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config is the main configuration structure. File values can be
// overridden with TONICMIDI_* environment variables.
type Config struct {
	// ClockInput is a substring matched against MIDI input port
	// names; the first match supplies the external clock.
	ClockInput string `json:"clockInput,omitempty" env:"TONICMIDI_CLOCK_INPUT"`

	// DefaultOutput receives events that don't name a port.
	DefaultOutput string `json:"defaultOutput,omitempty" env:"TONICMIDI_OUTPUT"`

	// PulsesPerStep sets the step grid (6 = sixteenth notes at the
	// standard 24 pulses per quarter).
	PulsesPerStep int `json:"pulsesPerStep,omitempty" env:"TONICMIDI_PULSES_PER_STEP"`

	// Song is the arrangement file played when no path is given on
	// the command line.
	Song string `json:"song,omitempty" env:"TONICMIDI_SONG"`

	// Palette is an optional GIMP .gpl file recoloring the monitor.
	Palette string `json:"palette,omitempty" env:"TONICMIDI_PALETTE"`

	Debug bool `json:"debug,omitempty" env:"TONICMIDI_DEBUG"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		PulsesPerStep: 6,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tonicmidi"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk (defaults if not found), then
// applies environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err == nil {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.PulsesPerStep <= 0 {
		cfg.PulsesPerStep = 6
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
