// Package server serves the departure board over HTTP: an HTML page
// with one quadrant per stop, the same data as JSON, a health check
// and Prometheus metrics.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"golang.org/x/time/rate"

	"departureboard.dev/gtfs"
	"departureboard.dev/gtfs/metrics"
)

const (
	DefaultRateLimit = 10
	DefaultRateBurst = 20

	timeLayout = "2006-01-02 15:04"
)

//go:embed templates/index.html
var templates embed.FS

// Board is what the server reads from. *gtfs.Manager implements it.
type Board interface {
	Static() (*gtfs.Static, error)
	Now() time.Time
}

type Options struct {
	// Display label for a stop. Defaults to the stop ID.
	Label func(stopID string) string

	Metrics *metrics.Collector

	// Requests per second allowed on /api. Zero disables limiting.
	RateLimit rate.Limit
	RateBurst int
}

type Server struct {
	app   *fiber.App
	board Board
	opts  Options
	index *template.Template
}

func New(board Board, opts Options) *Server {
	if opts.Label == nil {
		opts.Label = func(stopID string) string { return stopID }
	}

	s := &Server{
		board: board,
		opts:  opts,
		index: template.Must(template.ParseFS(templates, "templates/index.html")),
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(opts.RateLimit, opts.RateBurst)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(NewLogger())

	app.Get("/", s.handleIndex)
	app.Get("/healthz", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))

	api := app.Group("/api", NewRateLimiter(limiter))
	api.Get("/reports", s.handleReports)

	s.app = app
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

type stopView struct {
	StopID     string          `json:"stop_id"`
	Label      string          `json:"label"`
	Report     string          `json:"report"`
	Lines      []string        `json:"-"`
	Departures []departureView `json:"departures"`
}

type departureView struct {
	TripID   string    `json:"trip_id"`
	Minute   string    `json:"minute"`
	Headsign string    `json:"headsign"`
	Time     time.Time `json:"time"`
}

type boardView struct {
	Time  time.Time  `json:"time"`
	Stops []stopView `json:"stops"`
}

func (s *Server) view() (*boardView, error) {
	static, err := s.board.Static()
	if err != nil {
		return nil, err
	}

	now := s.board.Now().In(static.Location)
	view := &boardView{Time: now, Stops: []stopView{}}

	for _, report := range static.Departures(now) {
		text := static.Render(report)
		departures := make([]departureView, 0, len(report.Departures))
		for _, d := range report.Departures {
			departures = append(departures, departureView{
				TripID:   d.TripID,
				Minute:   d.Minute,
				Headsign: d.Headsign,
				Time:     d.Time,
			})
		}
		view.Stops = append(view.Stops, stopView{
			StopID:     report.StopID,
			Label:      s.opts.Label(report.StopID),
			Report:     text,
			Lines:      strings.Split(text, gtfs.LineSeparator),
			Departures: departures,
		})
	}

	return view, nil
}

func noSnapshot(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": gtfs.ErrNoSnapshot.Error(),
	})
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	view, err := s.view()
	if errors.Is(err, gtfs.ErrNoSnapshot) {
		return noSnapshot(c)
	}
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	err = s.index.Execute(buf, map[string]any{
		"DarkMode":    c.QueryBool("darkMode", false),
		"CurrentTime": view.Time.Format(timeLayout),
		"Stops":       view.Stops,
	})
	if err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) handleReports(c *fiber.Ctx) error {
	view, err := s.view()
	if errors.Is(err, gtfs.ErrNoSnapshot) {
		return noSnapshot(c)
	}
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	static, err := s.board.Static()
	if err != nil {
		return noSnapshot(c)
	}

	warnings := []string{}
	for _, w := range static.Warnings {
		warnings = append(warnings, w.Error())
	}

	return c.JSON(fiber.Map{
		"status":     "ok",
		"loaded_at":  static.LoadedAt,
		"stop_times": static.StopTimeTotal(),
		"warnings":   warnings,
	})
}
