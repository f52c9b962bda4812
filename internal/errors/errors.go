package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned when a requested resource doesn't exist
var ErrNotFound = errors.New("resource not found")

// ErrInvalidInput is returned when the provided input is invalid
var ErrInvalidInput = errors.New("invalid input")

// ErrUnreachable is returned when a light can't be reached, times out or
// answers with a non-2xx status or a body that can't be decoded
var ErrUnreachable = errors.New("light unreachable")

// ErrConfigParse is returned when the configuration file is malformed
var ErrConfigParse = errors.New("invalid configuration")

// ErrUnknownPreset is returned when a preset name isn't in the resolved table
var ErrUnknownPreset = errors.New("unknown preset")

// ErrUnknownMood is returned when a mood name isn't in the mood table
var ErrUnknownMood = errors.New("unknown mood")

// ErrUnknownEffect is returned when no effect is registered under a name
var ErrUnknownEffect = errors.New("unknown effect")

// LogErrorAndReturn logs an error with structured context and returns it
func LogErrorAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	if err == nil {
		return nil
	}
	logger.Error(message, append([]any{"error", err}, args...)...)
	return err
}

// WrapErrorf wraps an error with additional context using fmt.Errorf
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// IsNotFound returns true if the error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput returns true if the error is or wraps ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnreachable returns true if the error is or wraps ErrUnreachable
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// IsConfigParse returns true if the error is or wraps ErrConfigParse
func IsConfigParse(err error) bool {
	return errors.Is(err, ErrConfigParse)
}

// IsUnknownPreset returns true if the error is or wraps ErrUnknownPreset
func IsUnknownPreset(err error) bool {
	return errors.Is(err, ErrUnknownPreset)
}

// IsUnknownMood returns true if the error is or wraps ErrUnknownMood
func IsUnknownMood(err error) bool {
	return errors.Is(err, ErrUnknownMood)
}

// IsUnknownEffect returns true if the error is or wraps ErrUnknownEffect
func IsUnknownEffect(err error) bool {
	return errors.Is(err, ErrUnknownEffect)
}

// NotFoundf returns a formatted ErrNotFound error
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidInputf returns a formatted ErrInvalidInput error
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// Unreachablef returns a formatted ErrUnreachable error
func Unreachablef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnreachable)...)
}

// ConfigParsef returns a formatted ErrConfigParse error
func ConfigParsef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConfigParse)...)
}

// UnknownPresetf returns a formatted ErrUnknownPreset error
func UnknownPresetf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnknownPreset)...)
}

// UnknownMoodf returns a formatted ErrUnknownMood error
func UnknownMoodf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnknownMood)...)
}

// UnknownEffectf returns a formatted ErrUnknownEffect error
func UnknownEffectf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnknownEffect)...)
}
