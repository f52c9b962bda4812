package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		in    string
		valid string
		level slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"verbose", "info", slog.LevelInfo},
		{"", "info", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateLogLevel(tt.in))
			assert.Equal(t, tt.level, GetLogLevel(tt.in))
		})
	}
}

func TestValidateLogFormat(t *testing.T) {
	assert.Equal(t, "text", ValidateLogFormat("text"))
	assert.Equal(t, "json", ValidateLogFormat("json"))
	assert.Equal(t, "text", ValidateLogFormat("yaml"))
	assert.Equal(t, "text", ValidateLogFormat(""))
}

func TestSetupLogger(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := SetupLogger("info", "text", &buf)
		logger.Debug("hidden")
		logger.Info("shown", "light", "right")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "light=right")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := SetupLogger("debug", "json", &buf)
		logger.Debug("shown", "brightness", 40)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, float64(40), entry["brightness"])
	})

	t.Run("invalid level and format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := SetupLogger("invalid", "invalid", &buf)
		logger.Info("plain")
		assert.Contains(t, buf.String(), "msg=plain")
		assert.Equal(t, "info", CurrentLevel())
	})
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("info", "text", &buf)
	t.Cleanup(func() { SetLevel("info") })

	assert.Equal(t, "debug", SetLevel("debug"))
	assert.Equal(t, "debug", CurrentLevel())
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")

	assert.Equal(t, "info", SetLevel("loud"))
	assert.Equal(t, "info", CurrentLevel())
}

func TestSetupErrorLogger(t *testing.T) {
	assert.NotNil(t, SetupErrorLogger())
}

func TestSetAsDefaultLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("info", "text", io.Discard)
	SetAsDefaultLogger(logger)
	assert.Same(t, logger, slog.Default())
}

func TestLogConstants(t *testing.T) {
	assert.Equal(t, LogLevel("debug"), LogLevelDebug)
	assert.Equal(t, LogLevel("info"), LogLevelInfo)
	assert.Equal(t, LogLevel("warn"), LogLevelWarn)
	assert.Equal(t, LogLevel("error"), LogLevelError)
	assert.Equal(t, LogFormat("text"), LogFormatText)
	assert.Equal(t, LogFormat("json"), LogFormatJSON)
}
