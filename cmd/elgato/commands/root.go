package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/utils"
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	var (
		configPath string
		logLevel   string
		logFormat  string
		lights     []string
	)

	cmd := &cobra.Command{
		Use:          "elgato",
		Short:        "Control Elgato Key Lights",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = context.WithValue(ctx, lightsContextKey{}, lights)
			if _, ok := serviceFromContext(ctx); ok {
				cmd.SetContext(ctx)
				return nil
			}

			settings, err := config.LoadSettings(configPath)
			if err != nil {
				utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
				return err
			}
			if logLevel != "" {
				settings.Logging.Level = logLevel
			}
			if logFormat != "" {
				settings.Logging.Format = logFormat
			}

			// stdout is reserved for command output
			logger := utils.SetupLogger(settings.Logging.Level, settings.Logging.Format, os.Stderr)
			utils.SetAsDefaultLogger(logger)

			ctx = context.WithValue(ctx, loggerContextKey{}, logger)
			ctx = WithService(ctx, control.FromSettings(settings, nil, logger))
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().StringArrayVarP(&lights, "light", "l", nil, "Target specific light(s) by name (repeatable)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("Config file (default %s)", config.DefaultConfigPath()))
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	cmd.AddCommand(newVersionCommand(version, commit, buildDate))
	cmd.AddCommand(lightCommands()...)
	cmd.AddCommand(newPresetCommand(), newPresetsCommand())
	cmd.AddCommand(effectCommands()...)
	cmd.AddCommand(newMoodCommand(), newMoodsCommand())
	cmd.AddCommand(newDiscoverCommand())

	return cmd
}

type lightsContextKey struct{}

// targetLights returns the --light flag values.
func targetLights(cmd *cobra.Command) []string {
	if ctx := cmd.Context(); ctx != nil {
		if names, ok := ctx.Value(lightsContextKey{}).([]string); ok {
			return names
		}
	}
	return nil
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", commit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
