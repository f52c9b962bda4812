package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDiscoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Browse the network for lights and print config entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			lights := svc.Discover(cmd.Context())
			out := cmd.OutOrStdout()
			if len(lights) == 0 {
				fmt.Fprintln(out, "No lights found.")
				return nil
			}
			for i, l := range lights {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "[[lights]]\nname = %q\nhost = %q\nport = %d\n", l.Name, l.Host, l.Port)
				if l.ID != "" {
					fmt.Fprintf(out, "id = %q\n", l.ID)
				}
			}
			return nil
		},
	}
}
