package utils

import (
	"io"
	"log/slog"
	"os"

	"github.com/butterflysky/elgato-keylight/internal/config"
)

// LogLevel defines log level types
type LogLevel string

// Log level constants - using values from config package
const (
	LogLevelDebug LogLevel = LogLevel(config.LogLevelDebug)
	LogLevelInfo  LogLevel = LogLevel(config.LogLevelInfo)
	LogLevelWarn  LogLevel = LogLevel(config.LogLevelWarn)
	LogLevelError LogLevel = LogLevel(config.LogLevelError)
)

// LogFormat defines log format types
type LogFormat string

// Log format constants - using values from config package
const (
	LogFormatText LogFormat = LogFormat(config.LogFormatText)
	LogFormatJSON LogFormat = LogFormat(config.LogFormatJSON)
)

// level is shared by every logger built with SetupLogger so the level can
// be changed at runtime.
var level = new(slog.LevelVar)

var levels = map[LogLevel]slog.Level{
	LogLevelDebug: slog.LevelDebug,
	LogLevelInfo:  slog.LevelInfo,
	LogLevelWarn:  slog.LevelWarn,
	LogLevelError: slog.LevelError,
}

// GetLogLevel converts a string log level to slog.Level; unknown levels
// are info.
func GetLogLevel(lvl string) slog.Level {
	if l, ok := levels[LogLevel(lvl)]; ok {
		return l
	}
	return slog.LevelInfo
}

// ValidateLogLevel returns lvl when it names a level, otherwise info.
func ValidateLogLevel(lvl string) string {
	if _, ok := levels[LogLevel(lvl)]; ok {
		return lvl
	}
	return string(LogLevelInfo)
}

// ValidateLogFormat returns format when it is text or json, otherwise text.
func ValidateLogFormat(format string) string {
	if LogFormat(format) == LogFormatJSON {
		return format
	}
	return string(LogFormatText)
}

// SetupLogger creates a text or JSON logger writing to w (stderr when nil).
// Invalid levels and formats fall back to info and text.
func SetupLogger(lvl string, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level.Set(GetLogLevel(ValidateLogLevel(lvl)))

	opts := &slog.HandlerOptions{Level: level}
	if ValidateLogFormat(format) == string(LogFormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetLevel changes the level of every logger built by SetupLogger.
func SetLevel(lvl string) string {
	valid := ValidateLogLevel(lvl)
	level.Set(GetLogLevel(valid))
	return valid
}

// CurrentLevel is the level currently applied by SetupLogger loggers.
func CurrentLevel() string {
	current := level.Level()
	for name, l := range levels {
		if l == current {
			return string(name)
		}
	}
	return string(LogLevelInfo)
}

// SetupErrorLogger creates a simple text logger for reporting errors during startup.
func SetupErrorLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SetAsDefaultLogger sets a logger as the default logger
func SetAsDefaultLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
}
