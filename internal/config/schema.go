package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Zoom      ZoomConfig      `yaml:"zoom"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Content   ContentConfig   `yaml:"content"`
	Canvas    CanvasConfig    `yaml:"canvas"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Layout    LayoutConfig    `yaml:"layout"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ZoomConfig bounds the document zoom factor
type ZoomConfig struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
	Initial float64 `yaml:"initial"`
}

// OverlayConfig controls label and handle painting
type OverlayConfig struct {
	HandleSize float64 `yaml:"handle_size"`
	FontSize   float64 `yaml:"font_size"`
	FrameRate  int     `yaml:"frame_rate"` // drag repaints per second

	// MaxMegapixels bounds the painted surface at the current zoom
	MaxMegapixels float64 `yaml:"max_megapixels"`
}

// ContentConfig limits loaded floor-plan documents
type ContentConfig struct {
	MaxMegapixels float64 `yaml:"max_megapixels"`
}

// CanvasConfig is the overlay size used while no document is loaded
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CatalogConfig points at user item-type definitions
type CatalogConfig struct {
	Dir string `yaml:"dir,omitempty"` // *.toml files merged over the built-in types
}

// LayoutConfig selects and tunes the diagram layout
type LayoutConfig struct {
	Name        string  `yaml:"name"` // layered or grid
	RankSpacing float64 `yaml:"rank_spacing"`
	NodeSpacing float64 `yaml:"node_spacing"`
}

// DiscoveryConfig holds nmap scan settings
type DiscoveryConfig struct {
	Targets          []string `yaml:"targets,omitempty"`
	Ports            string   `yaml:"ports"`
	ServiceDetection bool     `yaml:"service_detection"`
	Timeout          Duration `yaml:"timeout"`
}

// WatchConfig tunes project file watching
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
