package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/sim"
)

// Config stores persistent viewer settings.
type Config struct {
	DarkMode       bool `json:"dark_mode"`
	SimulateOnOpen bool `json:"simulate_on_open"`
	MaxPasses      int  `json:"max_passes"`
	ShowLog        bool `json:"show_log"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		MaxPasses: sim.DefaultConfig().MaxPasses,
		ShowLog:   true,
	}
}

// SimConfig is the engine configuration the viewer runs with.
func (c *Config) SimConfig() *sim.Config {
	cfg := sim.DefaultConfig()
	if c.MaxPasses > 0 {
		cfg.MaxPasses = c.MaxPasses
	}
	return cfg
}

// ConfigPath returns the platform config file location, creating its
// directory.
func ConfigPath() (string, error) {
	var dir string
	if appData := os.Getenv("APPDATA"); appData != "" {
		// Windows: %APPDATA%\OpenTraceLogic
		dir = filepath.Join(appData, "OpenTraceLogic")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "opentracelogic")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig reads the settings at path. A missing file gives the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("ui: config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ui: config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the settings to path.
func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
