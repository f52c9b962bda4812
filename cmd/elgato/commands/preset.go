package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/butterflysky/elgato-keylight/internal/control"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
)

func newPresetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preset <name>",
		Short: "Apply a named preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			results, err := svc.ApplyPreset(cmd.Context(), name, targetLights(cmd))
			if kerrors.IsUnknownPreset(err) {
				presets, perr := svc.Presets(cmd.Context())
				if perr != nil {
					return err
				}
				return fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(presets.Names(), ", "))
			}
			if err != nil {
				return err
			}
			return reportResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, func(r control.LightResult) string {
				return fmt.Sprintf("%s: preset '%s' applied", r.Light.Name, name)
			})
		},
	}
}

func newPresetsCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			presets, err := svc.Presets(cmd.Context())
			if err != nil {
				return err
			}
			if !parseable {
				return pterm.DefaultTable.WithHasHeader().WithData(PresetTableData(presets)).Render()
			}
			out := cmd.OutOrStdout()
			for _, name := range presets.Names() {
				p := presets[name]
				fmt.Fprintf(out, "name=%q brightness=%d temperature=%d overrides=%d\n", name, p.Brightness, p.Temperature, len(p.Overrides))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}
