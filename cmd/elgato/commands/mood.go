package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
)

func newMoodCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mood <name>",
		Short: "Set mood lighting (cozy, focus, relax, energize, movie)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if _, err := svc.SetMood(cmd.Context(), name, targetLights(cmd)); err != nil {
				if kerrors.IsUnknownMood(err) {
					return fmt.Errorf("unknown mood %q (available: %s)", name, strings.Join(svc.Moods().Names(), ", "))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mood set: %s\n", name)
			return nil
		},
	}
}

func newMoodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "moods",
		Short: "List moods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			for _, m := range svc.Moods() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: brightness=%d%%, temp=%d (~%dK)\n", m.Name, m.State.Brightness, m.State.Temperature, m.State.Kelvin())
			}
			return nil
		},
	}
}
