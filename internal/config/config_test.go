package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %s, want :3000", cfg.Server.Addr)
	}
	if cfg.Zoom.Min != 0.5 || cfg.Zoom.Max != 4 || cfg.Zoom.Step != 0.1 || cfg.Zoom.Initial != 1 {
		t.Errorf("Zoom = %+v, want 0.5..4 step 0.1 from 1", cfg.Zoom)
	}
	if cfg.Overlay.HandleSize != 20 || cfg.Overlay.FontSize != 20 {
		t.Errorf("Overlay = %+v, want 20px handles and font", cfg.Overlay)
	}
	if cfg.Layout.Name != "layered" {
		t.Errorf("Layout.Name = %s, want layered", cfg.Layout.Name)
	}
	if cfg.Overlay.MaxMegapixels != 64 || cfg.Content.MaxMegapixels != 50 {
		t.Errorf("pixel caps = %g/%g, want 64/50", cfg.Overlay.MaxMegapixels, cfg.Content.MaxMegapixels)
	}
	if Pixels(cfg.Content.MaxMegapixels) != 50_000_000 {
		t.Errorf("Pixels(50) = %d", Pixels(cfg.Content.MaxMegapixels))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestFrameInterval(t *testing.T) {
	tests := []struct {
		rate int
		want time.Duration
	}{
		{60, time.Second / 60},
		{30, time.Second / 30},
		{0, time.Second / 60},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Overlay.FrameRate = tt.rate
		if got := cfg.FrameInterval(); got != tt.want {
			t.Errorf("FrameInterval() at %d fps = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero min zoom", func(c *Config) { c.Zoom.Min = -1 }},
		{"max below min", func(c *Config) { c.Zoom.Max = 0.25 }},
		{"negative step", func(c *Config) { c.Zoom.Step = -0.1 }},
		{"unknown layout", func(c *Config) { c.Layout.Name = "force" }},
		{"negative surface cap", func(c *Config) { c.Overlay.MaxMegapixels = -1 }},
		{"negative content cap", func(c *Config) { c.Content.MaxMegapixels = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":8080"
	cfg.Zoom.Max = 8
	cfg.Layout.Name = "grid"
	cfg.Discovery.Targets = []string{"192.168.1.0/24"}
	cfg.Watch.Debounce = Duration(time.Second)

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want :8080", loaded.Server.Addr)
	}
	if loaded.Zoom.Max != 8 {
		t.Errorf("Zoom.Max = %g, want 8", loaded.Zoom.Max)
	}
	if loaded.Layout.Name != "grid" {
		t.Errorf("Layout.Name = %s, want grid", loaded.Layout.Name)
	}
	if loaded.Watch.Debounce.Duration() != time.Second {
		t.Errorf("Watch.Debounce = %s, want 1s", loaded.Watch.Debounce.Duration())
	}
	if len(loaded.Discovery.Targets) != 1 || loaded.Discovery.Targets[0] != "192.168.1.0/24" {
		t.Errorf("Discovery.Targets = %v, want [192.168.1.0/24]", loaded.Discovery.Targets)
	}
}

func TestLoadPartialFileGetsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("zoom:\n  max: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Zoom.Max != 2 || cfg.Zoom.Min != 0.5 {
		t.Errorf("Zoom = %+v, want 0.5..2", cfg.Zoom)
	}
	if cfg.Database.Path != "./floorlink.db" {
		t.Errorf("Database.Path = %s, want ./floorlink.db", cfg.Database.Path)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvDatabase, "/tmp/x.db")
	t.Setenv(EnvConfigPath, "")
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %s, want :9999", cfg.Server.Addr)
	}
	if cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("Database.Path = %s, want /tmp/x.db", cfg.Database.Path)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("FLOORLINK_TEST_VALUE=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLOORLINK_TEST_VALUE", "")
	os.Unsetenv("FLOORLINK_TEST_VALUE")

	if err := LoadEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}
	if got := os.Getenv("FLOORLINK_TEST_VALUE"); got != "from-file" {
		t.Errorf("FLOORLINK_TEST_VALUE = %q, want from-file", got)
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	if err := DefaultConfig().Save(ConfigFileName); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	found := FindConfigPath()
	if filepath.Base(found) != ConfigFileName {
		t.Errorf("FindConfigPath() = %q, want working directory config", found)
	}

	// A missing explicit path falls back to the working directory.
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileName {
		t.Errorf("FindConfigPath() = %q, want fallback to working directory", found)
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %q, want %q", found, explicit)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
