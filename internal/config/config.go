// Package config provides configuration management for floorlink.
//
// Config file locations (priority order):
//  1. $FLOORLINK_CONFIG
//  2. ./floorlink.yaml
//  3. $XDG_CONFIG_HOME/floorlink/config.yaml
//  4. ~/.config/floorlink/config.yaml
//  5. /etc/floorlink/config.yaml
//
// Environment variables (optionally from a .env file) override the server
// address and database path after the file is read.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvAddr     = "FLOORLINK_ADDR"
	EnvDatabase = "FLOORLINK_DB"
	EnvCatalog  = "FLOORLINK_CATALOG"
)

// LoadEnv loads variables from the given .env files (default ".env") into
// the process environment without overriding variables already set.
// Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./floorlink.db"
	}

	if c.Zoom.Min == 0 {
		c.Zoom.Min = 0.5
	}
	if c.Zoom.Max == 0 {
		c.Zoom.Max = 4
	}
	if c.Zoom.Step == 0 {
		c.Zoom.Step = 0.1
	}
	if c.Zoom.Initial == 0 {
		c.Zoom.Initial = 1
	}

	if c.Overlay.HandleSize == 0 {
		c.Overlay.HandleSize = 20
	}
	if c.Overlay.FontSize == 0 {
		c.Overlay.FontSize = 20
	}
	if c.Overlay.FrameRate == 0 {
		c.Overlay.FrameRate = 60
	}
	if c.Overlay.MaxMegapixels == 0 {
		c.Overlay.MaxMegapixels = 64
	}
	if c.Content.MaxMegapixels == 0 {
		c.Content.MaxMegapixels = 50
	}

	if c.Canvas.Width == 0 {
		c.Canvas.Width = 1200
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = 800
	}

	if c.Layout.Name == "" {
		c.Layout.Name = "layered"
	}
	if c.Layout.RankSpacing == 0 {
		c.Layout.RankSpacing = 100
	}
	if c.Layout.NodeSpacing == 0 {
		c.Layout.NodeSpacing = 120
	}

	if c.Discovery.Ports == "" {
		c.Discovery.Ports = "22,80,443,161,3389,8080"
	}
	if c.Discovery.Timeout == 0 {
		c.Discovery.Timeout = Duration(5 * time.Minute)
	}

	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(250 * time.Millisecond)
	}
}

// applyEnv lets the environment override deployment-specific settings
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog.Dir = v
	}
}

// Validate rejects settings the session cannot run with
func (c *Config) Validate() error {
	switch {
	case c.Zoom.Min <= 0:
		return fmt.Errorf("zoom.min must be positive, got %g", c.Zoom.Min)
	case c.Zoom.Max < c.Zoom.Min:
		return fmt.Errorf("zoom.max %g is below zoom.min %g", c.Zoom.Max, c.Zoom.Min)
	case c.Zoom.Step <= 0:
		return fmt.Errorf("zoom.step must be positive, got %g", c.Zoom.Step)
	case c.Overlay.FrameRate < 0:
		return fmt.Errorf("overlay.frame_rate must not be negative, got %d", c.Overlay.FrameRate)
	case c.Overlay.MaxMegapixels < 0:
		return fmt.Errorf("overlay.max_megapixels must not be negative, got %g", c.Overlay.MaxMegapixels)
	case c.Content.MaxMegapixels < 0:
		return fmt.Errorf("content.max_megapixels must not be negative, got %g", c.Content.MaxMegapixels)
	case c.Layout.Name != "layered" && c.Layout.Name != "grid":
		return fmt.Errorf("unknown layout %q", c.Layout.Name)
	}
	return nil
}

// FrameInterval is the drag repaint throttle derived from the frame rate
func (c *Config) FrameInterval() time.Duration {
	if c.Overlay.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Overlay.FrameRate)
}

// Pixels converts a megapixel setting to a pixel count
func Pixels(megapixels float64) int {
	return int(megapixels * 1_000_000)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Zoom: %g..%g step %g, Overlay: handle %gpx font %gpt at %d fps\n",
		c.Zoom.Min, c.Zoom.Max, c.Zoom.Step,
		c.Overlay.HandleSize, c.Overlay.FontSize, c.Overlay.FrameRate)
	summary += fmt.Sprintf("Layout: %s", c.Layout.Name)
	if c.Catalog.Dir != "" {
		summary += fmt.Sprintf(", Catalog: %s", c.Catalog.Dir)
	}
	return summary
}
