// Package app provides the application shell and configuration for the emulator.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"nesgo/internal/graphics"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Paths     PathsConfig     `json:"paths"`
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Scale      int  `json:"scale"`
	Fullscreen bool `json:"fullscreen"`
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend string `json:"backend"` // "ebitengine", "headless"
	VSync   bool   `json:"vsync"`
}

// AudioConfig contains audio configuration
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	Volume     float64 `json:"volume"`
}

// InputConfig contains keyboard mappings for the two controllers
type InputConfig struct {
	Player1Keys graphics.KeyMapping `json:"player1_keys"`
	Player2Keys graphics.KeyMapping `json:"player2_keys"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	Region string `json:"region"` // NTSC only
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs string `json:"roms"`
}

// NewConfig creates a configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Scale: 3,
		},
		Video: VideoConfig{
			Backend: "ebitengine",
			VSync:   true,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     1.0,
		},
		Input: InputConfig{
			Player1Keys: graphics.DefaultPlayer1Keys(),
			Player2Keys: graphics.DefaultPlayer2Keys(),
		},
		Emulation: EmulationConfig{
			Region: "NTSC",
		},
		Paths: PathsConfig{
			ROMs: "./roms",
		},
	}
}

// LoadConfig reads a configuration file, falling back to defaults when the
// file does not exist.
func LoadConfig(path string) (*Config, error) {
	config := NewConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration as indented JSON
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}

// validate checks the fields that have hard constraints
func (c *Config) validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("config: sample rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Window.Scale < 1 || c.Window.Scale > 8 {
		return fmt.Errorf("config: window scale %d out of range 1-8", c.Window.Scale)
	}
	if c.Emulation.Region != "NTSC" {
		return fmt.Errorf("config: only NTSC is supported, got %q", c.Emulation.Region)
	}
	return nil
}

// GetDefaultConfigPath returns the conventional config file location
func GetDefaultConfigPath() string {
	return filepath.Join("config", "nesgo.json")
}
