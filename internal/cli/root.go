// Package cli implements pawsctl, the operator tool for checking the
// facility calendar and booking rules from a terminal.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"paws/internal/availability"
	"paws/internal/calendar"
	"paws/pkg/config"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

const ToolName = "pawsctl"

type engineFactory func(ctx context.Context) (*availability.Engine, error)

func NewRootCmd() *cobra.Command {
	return newRootCmd(newEngineFromEnv)
}

func newRootCmd(newEngine engineFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           ToolName,
		Short:         "Inspect boarding availability and booking rules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newCheckCmd(newEngine))
	root.AddCommand(newBlackoutCmd(newEngine))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newEngineFromEnv reads the same environment as the bookings service.
func newEngineFromEnv(ctx context.Context) (*availability.Engine, error) {
	cfg := config.Load(ToolName)
	if err := cfg.ValidateCalendar(); err != nil {
		return nil, err
	}

	gateway, err := calendar.NewGoogleGateway(ctx, calendar.Credentials{
		CalendarID:          cfg.GoogleCalendarID,
		ServiceAccountEmail: cfg.GoogleServiceAccountEmail,
		PrivateKey:          cfg.GooglePrivateKey,
	}, cfg.Location, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create calendar gateway: %w", err)
	}
	return availability.NewEngine(gateway, cfg.Location, cfg.CalendarTimeout, cfg.BlackoutMaxMonths, cfg.Log), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
