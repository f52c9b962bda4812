package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/systray"
	"github.com/spf13/pflag"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/tray"
	"github.com/butterflysky/elgato-keylight/internal/utils"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := pflag.String("config", "", "Path to config file")
	logLevel := pflag.String("log-level", "", "Log level (debug, info, warn, error)")
	showVersion := pflag.Bool("version", false, "Print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("elgato-tray %s (commit %s, built %s)\n", version, commit, buildDate)
		return
	}

	// Prevent multiple instances
	release, err := tray.AcquireLock(tray.LockPath())
	if err != nil {
		if errors.Is(err, tray.ErrAlreadyRunning) {
			fmt.Fprintf(os.Stderr, "elgato-tray is %v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	defer release()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		release()
		os.Exit(1)
	}
	if *logLevel != "" {
		settings.Logging.Level = *logLevel
	}
	logger := utils.SetupLogger(settings.Logging.Level, settings.Logging.Format, os.Stderr)
	utils.SetAsDefaultLogger(logger)

	svc := control.FromSettings(settings, nil, logger,
		control.WithClientOptions(keylight.WithTimeout(settings.Tray.Timeout)),
	)
	manager := tray.NewManager(svc, settings.Tray.PollInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	manager.OnQuit(stop)
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()

	if err := tray.WatchConfig(ctx, settings.Path, logger, manager.Reload); err != nil {
		logger.Warn("not watching config file", "path", settings.Path, "error", err)
	}

	logger.Info("Starting elgato-tray", "version", version, "config", settings.Path)
	systray.Run(manager.OnReady, manager.OnExit)
}
