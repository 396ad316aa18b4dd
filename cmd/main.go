package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"departureboard.dev/gtfs"
	"departureboard.dev/gtfs/config"
	"departureboard.dev/gtfs/metrics"

	_ "time/tzdata"
)

var rootCmd = &cobra.Command{
	Use:               "departureboard",
	Short:             "GTFS departure board",
	Long:              "Shows upcoming scheduled departures for a handful of stops",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	feedPath   string
	feedURL    string
	timezone   string
	debug      bool

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&feedPath, "feed", "", "", "GTFS feed directory or zip file")
	rootCmd.PersistentFlags().StringVarP(&feedURL, "feed-url", "", "", "GTFS feed URL (overrides --feed)")
	rootCmd.PersistentFlags().StringVarP(&timezone, "timezone", "", "", "Timezone, empty for the feed's agency timezone")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "", false, "Debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	if os.Getenv(config.EnvPrefix+"LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if debug || os.Getenv(config.EnvPrefix+"DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	setupLogging()

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("feed") {
		cfg.Feed.Path = feedPath
	}
	if flags.Changed("feed-url") {
		cfg.Feed.URL = feedURL
	}
	if flags.Changed("timezone") {
		cfg.Timezone = timezone
	}

	return cfg.Validate()
}

func newManager(collector *metrics.Collector) (*gtfs.Manager, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	m := gtfs.NewManager(gtfs.StaticOptions{
		Targets:  cfg.StopIDs(),
		Location: location,
		Window:   cfg.Window,
		Metrics:  collector,
	})
	m.Headers = cfg.Feed.Headers
	m.RefreshInterval = cfg.Feed.RefreshInterval
	m.FeedTimeout = cfg.Feed.Timeout

	return m, nil
}

// Loads the configured feed, from URL if there is one.
func loadFeed(ctx context.Context, m *gtfs.Manager) error {
	var err error
	if cfg.Feed.URL != "" {
		log.Info().Str("url", cfg.Feed.URL).Msg("Downloading feed")
		err = m.LoadURL(ctx, cfg.Feed.URL)
	} else {
		log.Info().Str("path", cfg.Feed.Path).Msg("Loading feed")
		err = m.LoadPath(cfg.Feed.Path)
	}
	if err != nil {
		return fmt.Errorf("loading feed: %w", err)
	}

	static, err := m.Static()
	if err != nil {
		return err
	}
	for _, w := range static.Warnings {
		log.Warn().Err(w).Msg("Feed loaded with missing data")
	}

	return nil
}
