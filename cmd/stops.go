package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopsCmd = &cobra.Command{
	Use:   "stops",
	Short: "Lists the configured stops and their indexed stop times",
	Args:  cobra.NoArgs,
	RunE:  stops,
}

func init() {
	rootCmd.AddCommand(stopsCmd)
}

func stops(cmd *cobra.Command, args []string) error {
	m, err := newManager(nil)
	if err != nil {
		return err
	}

	if err := loadFeed(cmd.Context(), m); err != nil {
		return err
	}

	static, err := m.Static()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, stop := range cfg.Stops {
		fmt.Fprintf(out, "%s: %s (%d stop times)\n", stop.ID, cfg.Label(stop.ID), static.StopTimeCount(stop.ID))
	}

	startDate, endDate := static.CalendarRange()
	fmt.Fprintf(out, "timezone %s, calendar %s-%s\n", static.Location, startDate, endDate)

	return nil
}
