package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/events"
	"github.com/butterflysky/elgato-keylight/internal/http/handlers"
	"github.com/butterflysky/elgato-keylight/internal/server"
	"github.com/butterflysky/elgato-keylight/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// newFlagSet declares the daemon's command line flags.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("elgatod", pflag.ContinueOnError)
	fs.String("config", "", "Path to config file")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("log-format", "", "Log format (text, json)")
	fs.String("listen", "", "HTTP API listen address (overrides server.listen)")
	fs.String("mqtt-broker", "", "MQTT broker address (overrides mqtt.broker)")
	fs.Bool("version", false, "Print version and exit")
	return fs
}

// applyFlags overrides settings with the flags that were set.
func applyFlags(s *config.Settings, fs *pflag.FlagSet) {
	override := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	override("log-level", &s.Logging.Level)
	override("log-format", &s.Logging.Format)
	override("listen", &s.Server.Listen)
	override("mqtt-broker", &s.MQTT.Broker)
}

func main() {
	fs := newFlagSet()
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if v, _ := fs.GetBool("version"); v {
		fmt.Printf("elgatod %s (commit %s, built %s)\n", version, commit, buildDate)
		return
	}

	configPath, _ := fs.GetString("config")
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(settings, fs)

	logger := utils.SetupLogger(settings.Logging.Level, settings.Logging.Format, os.Stderr)
	utils.SetAsDefaultLogger(logger)

	logger.Info("Starting elgatod",
		"version", version,
		"commit", commit,
		"buildDate", buildDate,
		"config", settings.Path,
	)

	bus := events.NewBus()
	svc := control.FromSettings(settings, bus, logger)
	srv := server.New(logger, settings, svc, bus, handlers.VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})

	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", "error", err)
		srv.Stop()
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
	srv.Stop()
}
