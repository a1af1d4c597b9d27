package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "NODEREG_CONFIG"
	// EnvSecret overrides auth.secret from the config file
	EnvSecret = "NODEREG_SECRET"
	// ConfigFileName is the default config file name
	ConfigFileName = "nodereg.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "nodereg"
)

// FindConfigPath searches for config file in priority order:
// 1. $NODEREG_CONFIG (explicit path)
// 2. ./nodereg.yaml (working directory)
// 3. $XDG_CONFIG_HOME/nodereg/config.yaml
// 4. ~/.config/nodereg/config.yaml
// 5. /etc/nodereg/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	systemPath := filepath.Join("/etc", ConfigDirName, "config.yaml")
	if fileExists(systemPath) {
		return systemPath
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
