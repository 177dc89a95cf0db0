package cli

import (
	"fmt"
	"time"

	"paws/internal/rules"
	"paws/pkg/model"

	"github.com/spf13/cobra"
)

// classify needs no credentials; it only applies the stay pattern rules.
func newClassifyCmd() *cobra.Command {
	var timezone string

	c := &cobra.Command{
		Use:   "classify START END",
		Short: "Classify a stay as weeknight, weekend package or invalid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}
			r, err := model.ParseDateRange(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stay, err := rules.ValidateStay(r, model.DateOf(time.Now().In(loc)))
			if err != nil {
				fmt.Fprintf(out, "%s: %s\n", model.BookingTypeInvalid, stay.Reason)
				return err
			}
			fmt.Fprintf(out, "%s: %s (%d nights)\n", stay.Type, r.Format(), r.Nights())
			return nil
		},
	}

	c.Flags().StringVar(&timezone, "timezone", "America/New_York", "facility timezone used for today")
	return c
}
