package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"departureboard.dev/gtfs/clock"
)

var departuresCmd = &cobra.Command{
	Use:   "departures",
	Short: "Prints upcoming departures for the configured stops",
	Args:  cobra.NoArgs,
	RunE:  departures,
}

var (
	at    string
	lines bool
)

func init() {
	departuresCmd.Flags().StringVarP(&at, "at", "", "", "Evaluate at this time (RFC3339) instead of now")
	departuresCmd.Flags().BoolVarP(&lines, "lines", "l", false, "One line per departure")
	rootCmd.AddCommand(departuresCmd)
}

func departures(cmd *cobra.Command, args []string) error {
	m, err := newManager(nil)
	if err != nil {
		return err
	}

	if at != "" {
		when, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		m.Clock = clock.NewMockClock(when)
	}

	if err := loadFeed(cmd.Context(), m); err != nil {
		return err
	}

	static, err := m.Static()
	if err != nil {
		return err
	}

	now := m.Now()
	out := cmd.OutOrStdout()

	for _, report := range static.Departures(now) {
		label := cfg.Label(report.StopID)

		if !lines {
			fmt.Fprintf(out, "%s: %s\n", label, static.Render(report))
			continue
		}

		if len(report.Departures) == 0 {
			fmt.Fprintf(out, "%s\t-\t%s\n", label, static.Fallback())
			continue
		}
		for _, d := range report.Departures {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", label, d.Minute, d.Headsign, d.TripID)
		}
	}

	return nil
}
