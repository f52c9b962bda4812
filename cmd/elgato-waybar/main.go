package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/utils"
	"github.com/butterflysky/elgato-keylight/internal/waybar"
)

func main() {
	configPath := pflag.String("config", "", "Path to config file")
	lights := pflag.StringArrayP("light", "l", nil, "Only report these lights (repeatable)")
	interval := pflag.Duration("interval", 0, "Keep running and print a line every interval (0 prints once)")
	logLevel := pflag.String("log-level", config.LogLevelError, "Log level (debug, info, warn, error)")
	pflag.Parse()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		// waybar shows the error instead of an empty module
		_ = waybar.Write(os.Stdout, waybar.ErrorOutput(err))
		return
	}
	logger := utils.SetupLogger(*logLevel, settings.Logging.Format, os.Stderr)
	svc := control.FromSettings(settings, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emit := func() {
		if err := waybar.Write(os.Stdout, waybar.Render(ctx, svc, *lights)); err != nil {
			logger.Error("failed to write status", "error", err)
		}
	}

	emit()
	if *interval <= 0 {
		return
	}

	// SIGUSR1 refreshes immediately, e.g. after "elgato toggle"
	refresh := make(chan os.Signal, 1)
	signal.Notify(refresh, syscall.SIGUSR1)
	ticker := time.NewTicker(config.ValidatePollInterval(*interval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emit()
		case <-refresh:
			emit()
		}
	}
}
