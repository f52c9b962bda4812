package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// GetRuntimeDir returns the XDG runtime directory
func GetRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return filepath.Join("/run/user", strconv.Itoa(os.Getuid()))
}

// GetConfigBaseDir returns the base directory for configuration files
func GetConfigBaseDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", ConfigDirName)
}

// GetConfigPath returns the full path to a file in the config directory
func GetConfigPath(filename string) string {
	return filepath.Join(GetConfigBaseDir(), filename)
}

// DefaultConfigPath is $ELGATO_CONFIG, or config.toml in the config directory
func DefaultConfigPath() string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}
	return GetConfigPath(ConfigFilename)
}

// EffectsDir is the directory holding Lua effects next to configPath
func EffectsDir(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), EffectsDirName)
}

// ValidatePollInterval clamps an interval to the minimum allowed value
func ValidatePollInterval(d time.Duration) time.Duration {
	if d < MinPollInterval {
		return MinPollInterval
	}
	return d
}
