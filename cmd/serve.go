package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"departureboard.dev/gtfs/metrics"
	"departureboard.dev/gtfs/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the departure board over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var listen string

func init() {
	serveCmd.Flags().StringVarP(&listen, "listen", "", "", "Address to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("listen") {
		cfg.Listen = listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	m, err := newManager(collector)
	if err != nil {
		return err
	}

	if err := loadFeed(ctx, m); err != nil {
		return err
	}

	if cfg.Feed.URL != "" {
		go func() {
			err := m.Run(ctx, cfg.Feed.URL)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Feed refresh stopped")
			}
		}()
	}

	srv := server.New(m, server.Options{
		Label:     cfg.Label,
		Metrics:   collector,
		RateLimit: server.DefaultRateLimit,
		RateBurst: server.DefaultRateBurst,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutting down server")
		}
	}()

	log.Info().Str("listen", cfg.Listen).Msg("Serving departure board")
	return srv.Listen(cfg.Listen)
}
