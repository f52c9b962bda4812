package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/butterflysky/elgato-keylight/internal/effects"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
)

func effectCommands() []*cobra.Command {
	return []*cobra.Command{
		newFlashCommand(),
		newPulseCommand(),
		newEffectCommand("celebrate", "Fun alternating color temperature dance", "celebration", nil, "Celebration complete!"),
		newAlertCommand(),
		newDimCommand(),
		newRunCommand(),
		newEffectsCommand(),
	}
}

// runEffect plays effect and reports lights that could not be restored.
func runEffect(cmd *cobra.Command, effect string, p effects.Params, done string) error {
	svc, err := getService(cmd)
	if err != nil {
		return err
	}
	res, err := svc.RunEffect(cmd.Context(), effect, p, targetLights(cmd))
	if kerrors.IsUnknownEffect(err) {
		return fmt.Errorf("unknown effect %q (available: %s)", effect, strings.Join(svc.Effects(), ", "))
	}
	if err != nil {
		return err
	}
	if failed := res.Restore.Failed(); len(failed) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "could not restore: %s\n", strings.Join(failed, ", "))
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return res.Restore.Err()
}

// atLeastOne rejects counts the effects would otherwise replace with their
// defaults.
func atLeastOne(flag string, v int) error {
	if v < 1 {
		return fmt.Errorf("--%s must be at least 1, got %d", flag, v)
	}
	return nil
}

func newEffectCommand(use, short, effect string, params func() (effects.Params, error), done string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p effects.Params
			if params != nil {
				var err error
				if p, err = params(); err != nil {
					return err
				}
			}
			return runEffect(cmd, effect, p, done)
		},
	}
}

func newFlashCommand() *cobra.Command {
	var (
		times    int
		interval float64
	)
	cmd := newEffectCommand("flash", "Flash lights to get attention", "flash", func() (effects.Params, error) {
		if err := atLeastOne("times", times); err != nil {
			return effects.Params{}, err
		}
		if interval <= 0 {
			return effects.Params{}, fmt.Errorf("--interval must be positive, got %g", interval)
		}
		return effects.Params{Times: times, Interval: interval}, nil
	}, "Flash complete.")
	cmd.Flags().IntVar(&times, "times", effects.DefaultFlashTimes, "Number of flashes")
	cmd.Flags().Float64Var(&interval, "interval", effects.DefaultFlashInterval.Seconds(), "Seconds between toggles")
	return cmd
}

func newPulseCommand() *cobra.Command {
	var cycles, stepMS int
	cmd := newEffectCommand("pulse", "Smoothly pulse brightness up and down", "pulse", func() (effects.Params, error) {
		if err := atLeastOne("cycles", cycles); err != nil {
			return effects.Params{}, err
		}
		if err := atLeastOne("step-ms", stepMS); err != nil {
			return effects.Params{}, err
		}
		return effects.Params{Cycles: cycles, StepMS: stepMS}, nil
	}, "Pulse complete.")
	cmd.Flags().IntVar(&cycles, "cycles", effects.DefaultPulseCycles, "Number of pulse cycles")
	cmd.Flags().IntVar(&stepMS, "step-ms", int(effects.DefaultPulseStep.Milliseconds()), "Milliseconds per brightness step")
	return cmd
}

func newAlertCommand() *cobra.Command {
	var flashes int
	cmd := newEffectCommand("alert", "Urgent attention-getting flash", "alert", func() (effects.Params, error) {
		if err := atLeastOne("flashes", flashes); err != nil {
			return effects.Params{}, err
		}
		return effects.Params{Flashes: flashes}, nil
	}, "Alert complete.")
	cmd.Flags().IntVar(&flashes, "flashes", effects.DefaultAlertFlashes, "Number of alert flashes")
	return cmd
}

func newDimCommand() *cobra.Command {
	var target, steps int
	cmd := newEffectCommand("dim", "Slowly dim lights, then restore them", "dim", func() (effects.Params, error) {
		if err := atLeastOne("steps", steps); err != nil {
			return effects.Params{}, err
		}
		return effects.Params{Target: &target, Steps: steps}, nil
	}, "Dim complete.")
	cmd.Flags().IntVar(&target, "target", effects.DefaultDimTarget, "Target brightness")
	cmd.Flags().IntVar(&steps, "steps", effects.DefaultDimSteps, "Number of steps")
	return cmd
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <effect>",
		Short: "Run any registered effect, including Lua scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEffect(cmd, args[0], effects.Params{}, "Effect complete.")
		},
	}
}

func newEffectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "effects",
		Short: "List effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			for _, name := range svc.Effects() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
