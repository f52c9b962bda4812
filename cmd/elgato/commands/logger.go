package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

type loggerContextKey struct{}

// getLoggerFromCmd returns the slog.Logger from the command context
func getLoggerFromCmd(cmd *cobra.Command) *slog.Logger {
	if ctx := cmd.Context(); ctx != nil {
		if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}
