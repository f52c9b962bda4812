package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigBaseDir(t *testing.T) {
	t.Run("custom XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/home/user/myconfigs")
		assert.Equal(t, "/home/user/myconfigs/elgato-keylight", GetConfigBaseDir())
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		dir := GetConfigBaseDir()
		assert.True(t, filepath.IsAbs(dir) || strings.HasPrefix(dir, ".config"))
		assert.True(t, strings.HasSuffix(dir, filepath.Join(".config", "elgato-keylight")))
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv(ConfigPathEnv, "")
	assert.Equal(t, "/cfg/elgato-keylight/config.toml", DefaultConfigPath())

	t.Setenv(ConfigPathEnv, "/tmp/lights.toml")
	assert.Equal(t, "/tmp/lights.toml", DefaultConfigPath())
}

func TestEffectsDir(t *testing.T) {
	assert.Equal(t, "/cfg/elgato-keylight/effects", EffectsDir("/cfg/elgato-keylight/config.toml"))
}

func TestGetRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000", GetRuntimeDir())
}

func TestValidatePollInterval(t *testing.T) {
	assert.Equal(t, MinPollInterval, ValidatePollInterval(0))
	assert.Equal(t, 10*time.Second, ValidatePollInterval(10*time.Second))
}
