package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBlackoutCmd(newEngine engineFactory) *cobra.Command {
	var (
		months int
		asJSON bool
	)

	c := &cobra.Command{
		Use:   "blackout",
		Short: "List blacked out days from this month through --months ahead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			set, err := engine.ComputeBlackoutDates(cmd.Context(), months)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, set)
			}
			fmt.Fprintf(out, "%s to %s: %d blacked out\n", set.Window.Start, set.Window.End, len(set.Dates))
			for _, d := range set.Dates {
				fmt.Fprintf(out, "  %s %s\n", d, d.Weekday().String()[:3])
			}
			return nil
		},
	}

	c.Flags().IntVar(&months, "months", 3, "months ahead of the current one")
	c.Flags().BoolVar(&asJSON, "json", false, "print the set as JSON")
	return c
}
