package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

const defaultBrightnessStep = 10

func lightCommands() []*cobra.Command {
	return []*cobra.Command{
		newStatusCommand(),
		newOnCommand(),
		newOffCommand(),
		newToggleCommand(),
		newBrightnessCommand(),
		newBrightnessStepCommand("brightness-up", "Increase brightness", 1),
		newBrightnessStepCommand("brightness-down", "Decrease brightness", -1),
		newTemperatureCommand(),
		newIdentifyCommand(),
	}
}

// newStatusCommand creates the status command
func newStatusCommand() *cobra.Command {
	var (
		parseable bool
		table     bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of all lights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			statuses, err := svc.Status(cmd.Context(), targetLights(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case parseable:
				for _, st := range statuses {
					fmt.Fprintln(out, StatusParseable(st))
				}
			case table:
				if err := pterm.DefaultTable.WithHasHeader().WithData(StatusTableData(statuses)).Render(); err != nil {
					return err
				}
			default:
				for _, st := range statuses {
					if st.Err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: error: %v\n", st.Light.Name, st.Err)
						continue
					}
					fmt.Fprintln(out, statusLine(st))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	cmd.Flags().BoolVarP(&table, "table", "t", false, "Output as a table")
	return cmd
}

// lightResultCommand builds a command that runs op and prints one line per
// light.
func lightResultCommand(use, short string, args cobra.PositionalArgs,
	op func(cmd *cobra.Command, svc control.Service, args []string) ([]control.LightResult, error),
	line func(control.LightResult) string,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			results, err := op(cmd, svc, args)
			if err != nil {
				return err
			}
			return reportResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, line)
		},
	}
}

func powerLine(r control.LightResult) string {
	return fmt.Sprintf("%s: %s", r.Light.Name, power(r.State.On))
}

func brightnessLine(r control.LightResult) string {
	return fmt.Sprintf("%s: brightness=%d%%", r.Light.Name, r.State.Brightness)
}

func temperatureLine(r control.LightResult) string {
	return fmt.Sprintf("%s: temp=%d (~%dK)", r.Light.Name, r.State.Temperature, r.State.Kelvin())
}

func newOnCommand() *cobra.Command {
	var brightness, temperature int
	cmd := lightResultCommand("on", "Turn lights on", cobra.NoArgs,
		func(cmd *cobra.Command, svc control.Service, _ []string) ([]control.LightResult, error) {
			on := true
			patch := keylight.StatePatch{On: &on}
			if cmd.Flags().Changed("brightness") {
				patch.Brightness = &brightness
			}
			if cmd.Flags().Changed("temperature") {
				patch.Temperature = &temperature
			}
			return svc.Update(cmd.Context(), targetLights(cmd), patch)
		}, powerLine)
	cmd.Flags().IntVarP(&brightness, "brightness", "b", keylight.DefaultBrightness, "Also set brightness (0-100)")
	cmd.Flags().IntVarP(&temperature, "temperature", "t", keylight.DefaultTemperature, "Also set temperature (143-344)")
	return cmd
}

func newOffCommand() *cobra.Command {
	return lightResultCommand("off", "Turn lights off", cobra.NoArgs,
		func(cmd *cobra.Command, svc control.Service, _ []string) ([]control.LightResult, error) {
			return svc.TurnOff(cmd.Context(), targetLights(cmd))
		}, powerLine)
}

func newToggleCommand() *cobra.Command {
	return lightResultCommand("toggle", "Toggle lights on/off", cobra.NoArgs,
		func(cmd *cobra.Command, svc control.Service, _ []string) ([]control.LightResult, error) {
			return svc.Toggle(cmd.Context(), targetLights(cmd))
		}, powerLine)
}

func newBrightnessCommand() *cobra.Command {
	return lightResultCommand("brightness <0-100>", "Set brightness (0-100)", cobra.ExactArgs(1),
		func(cmd *cobra.Command, svc control.Service, args []string) ([]control.LightResult, error) {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("invalid brightness value %q: %w", args[0], err)
			}
			return svc.SetBrightness(cmd.Context(), targetLights(cmd), value)
		}, brightnessLine)
}

func newBrightnessStepCommand(use, short string, sign int) *cobra.Command {
	var step int
	cmd := lightResultCommand(use, short, cobra.NoArgs,
		func(cmd *cobra.Command, svc control.Service, _ []string) ([]control.LightResult, error) {
			return svc.AdjustBrightness(cmd.Context(), targetLights(cmd), sign*step)
		}, brightnessLine)
	cmd.Flags().IntVar(&step, "step", defaultBrightnessStep, "Step size")
	return cmd
}

func newTemperatureCommand() *cobra.Command {
	return lightResultCommand("temperature <143-344>", "Set color temperature (143=cool/7000K, 344=warm/2900K)", cobra.ExactArgs(1),
		func(cmd *cobra.Command, svc control.Service, args []string) ([]control.LightResult, error) {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("invalid temperature value %q: %w", args[0], err)
			}
			return svc.SetTemperature(cmd.Context(), targetLights(cmd), value)
		}, temperatureLine)
}

func newIdentifyCommand() *cobra.Command {
	return lightResultCommand("identify", "Flash lights to identify them", cobra.NoArgs,
		func(cmd *cobra.Command, svc control.Service, _ []string) ([]control.LightResult, error) {
			return svc.Identify(cmd.Context(), targetLights(cmd))
		}, func(r control.LightResult) string {
			return r.Light.Name + ": identified"
		})
}
