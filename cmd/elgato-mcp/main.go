package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/mcpserver"
	"github.com/butterflysky/elgato-keylight/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := pflag.String("config", "", "Path to config file")
	logLevel := pflag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := pflag.String("log-format", "", "Log format (text, json)")
	pflag.Parse()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		settings.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		settings.Logging.Format = *logFormat
	}

	// stdout carries the protocol
	logger := utils.SetupLogger(settings.Logging.Level, settings.Logging.Format, os.Stderr)
	utils.SetAsDefaultLogger(logger)
	logger.Info("Starting elgato-mcp", "version", version, "commit", commit, "buildDate", buildDate, "config", settings.Path)

	srv := mcpserver.New(control.FromSettings(settings, nil, logger), version, logger)
	if err := srv.ServeStdio(); err != nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
