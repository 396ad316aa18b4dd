package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"departureboard.dev/gtfs/parse"
	"departureboard.dev/gtfs/schedule"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Writes the stop times of the configured stops to a smaller table",
	Long: `Filters a full stop_times.txt down to rows for the configured stops
(or their platforms). Put the output next to the other tables as
stop_times_extracted.txt and it is used in place of stop_times.txt.`,
	Args: cobra.NoArgs,
	RunE: extract,
}

var (
	stopTimesPath string
	extractOut    string
)

func init() {
	extractCmd.Flags().StringVarP(&stopTimesPath, "stop-times", "", "", "Full stop_times.txt (default: the one in --feed)")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Output file (default: stop_times_extracted.txt in --feed)")
	rootCmd.AddCommand(extractCmd)
}

func extract(cmd *cobra.Command, args []string) error {
	src, err := parse.Open(cfg.Feed.Path)
	if err != nil {
		return err
	}

	stops, err := parse.ParseStops(src)
	if err != nil {
		return err
	}
	hierarchy := schedule.NewStopHierarchy(stops)

	targets := map[string]bool{}
	for _, id := range cfg.StopIDs() {
		targets[id] = true
	}
	keep := func(stopID string) bool {
		if targets[stopID] {
			return true
		}
		parent, found := hierarchy.Resolve(stopID)
		return found && targets[parent]
	}

	if stopTimesPath == "" {
		stopTimesPath = filepath.Join(cfg.Feed.Path, parse.StopTimesFile)
	}
	if extractOut == "" {
		extractOut = filepath.Join(cfg.Feed.Path, parse.ExtractedStopTimesFile)
	}

	in, err := os.Open(stopTimesPath)
	if err != nil {
		return fmt.Errorf("opening stop times: %w", err)
	}
	defer in.Close()

	out, err := os.Create(extractOut)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	n, err := parse.ExtractStopTimes(in, out, keep)
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	log.Info().Int("rows", n).Str("out", extractOut).Msg("Extracted stop times")

	return nil
}
