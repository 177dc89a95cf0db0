package cli

import (
	"fmt"

	"paws/internal/availability"
	"paws/pkg/model"

	"github.com/spf13/cobra"
)

func newCheckCmd(newEngine engineFactory) *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "check START END",
		Short: "Check the facility calendar for a stay",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseDateRange(args[0], args[1])
			if err != nil {
				return err
			}

			engine, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			verdict, err := engine.CheckRangeAvailability(cmd.Context(), r)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), verdict)
			}
			fmt.Fprintln(cmd.OutOrStdout(), availability.FormatAvailabilityMessage(r, verdict))
			return nil
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "print the verdict as JSON")
	return c
}
