package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "FLOORLINK_CONFIG"
	// ConfigFileName is the working-directory config file name
	ConfigFileName = "floorlink.yaml"
	// ConfigDirName is the directory name under the XDG config home
	ConfigDirName = "floorlink"
)

// searchPaths lists candidate config files in priority order. Empty
// entries are candidates whose base variable is unset.
func searchPaths() []string {
	paths := []string{os.Getenv(EnvConfigPath), ConfigFileName}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing config file from:
// 1. $FLOORLINK_CONFIG (explicit path)
// 2. ./floorlink.yaml (working directory)
// 3. $XDG_CONFIG_HOME/floorlink/config.yaml
// 4. ~/.config/floorlink/config.yaml
// 5. /etc/floorlink/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	for _, path := range searchPaths() {
		if path == "" || !fileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// configHome is $XDG_CONFIG_HOME/floorlink, ~/.config/floorlink, or ""
func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigDirName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName)
	}
	return ""
}

// DefaultConfigPath returns the preferred location for a new config file,
// falling back to the working directory.
func DefaultConfigPath() string {
	if dir := configHome(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return ConfigFileName
}

// DefaultCatalogDir is where "floorlink catalog define" writes new types
// when no catalog dir is configured.
func DefaultCatalogDir() string {
	if dir := configHome(); dir != "" {
		return filepath.Join(dir, "types")
	}
	return "types"
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
