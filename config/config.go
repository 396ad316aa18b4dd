// Package config loads the departure board configuration.
//
// Values are layered: built-in defaults, then an optional YAML file,
// then DEPARTURES_* environment variables (a .env file in the working
// directory is loaded into the environment first). Command line flags
// are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "DEPARTURES_"

type Stop struct {
	ID    string `yaml:"id" validate:"required"`
	Label string `yaml:"label"`
}

type FeedConfig struct {
	// Directory or zip file on disk. Ignored if URL is set.
	Path            string            `yaml:"path" validate:"required_without=URL"`
	URL             string            `yaml:"url" validate:"omitempty,url"`
	Headers         map[string]string `yaml:"headers"`
	RefreshInterval time.Duration     `yaml:"refresh_interval" validate:"gt=0"`
	Timeout         time.Duration     `yaml:"timeout" validate:"gte=0"`
}

type Config struct {
	Feed FeedConfig `yaml:"feed"`

	// IANA zone the schedule is evaluated in. Empty means the
	// feed's agency.txt timezone.
	Timezone string        `yaml:"timezone" validate:"omitempty,timezone"`
	Window   time.Duration `yaml:"window" validate:"gte=1m"`
	Listen   string        `yaml:"listen" validate:"required"`

	// The four target stops, in display order. IDs must be unique.
	Stops []Stop `yaml:"stops" validate:"required,len=4,unique=ID,dive"`
}

func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			Path:            "gtfs",
			Headers:         map[string]string{},
			RefreshInterval: 12 * time.Hour,
			Timeout:         60 * time.Second,
		},
		Timezone: "Europe/Stockholm",
		Window:   15 * time.Minute,
		Listen:   ":8080",
		Stops: []Stop{
			{ID: "9022001004513001", Label: "Årstadal mot Solna station"},
			{ID: "9022001004513002", Label: "Årstadal mot Sickla"},
			{ID: "9022001013905001", Label: "Sjövikstorget mot Östbergahöjden"},
			{ID: "9022001013905002", Label: "Sjövikstorget mot Liljeholmen"},
		},
	}
}

// Loads configuration from defaults, the YAML file at path (skipped
// if path is empty) and the environment. The result is validated.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPrefix + "FEED"); v != "" {
		c.Feed.Path = v
	}
	if v := os.Getenv(EnvPrefix + "FEED_URL"); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv(EnvPrefix + "LISTEN"); v != "" {
		c.Listen = v
	}

	// Set but empty selects the agency timezone.
	if v, ok := os.LookupEnv(EnvPrefix + "TIMEZONE"); ok {
		c.Timezone = v
	}

	for _, d := range []struct {
		name string
		dst  *time.Duration
	}{
		{"WINDOW", &c.Window},
		{"REFRESH_INTERVAL", &c.Feed.RefreshInterval},
		{"FEED_TIMEOUT", &c.Feed.Timeout},
	} {
		v := os.Getenv(EnvPrefix + d.name)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %q", EnvPrefix, d.name, v)
		}
		*d.dst = parsed
	}

	if v := os.Getenv(EnvPrefix + "STOPS"); v != "" {
		stops, err := ParseStops(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTOPS: %w", EnvPrefix, err)
		}
		c.Stops = stops
	}

	return nil
}

// Parses a comma separated list of stops, each "id" or "id=label".
func ParseStops(s string) ([]Stop, error) {
	stops := []Stop{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, label, _ := strings.Cut(item, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("missing stop id in '%s'", item)
		}
		stops = append(stops, Stop{ID: id, Label: strings.TrimSpace(label)})
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("no stops in '%s'", s)
	}
	return stops, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// The configured location, or nil when the feed's own timezone
// should be used.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}

func (c *Config) StopIDs() []string {
	ids := make([]string, 0, len(c.Stops))
	for _, s := range c.Stops {
		ids = append(ids, s.ID)
	}
	return ids
}

// Display label for a stop, falling back to its ID.
func (c *Config) Label(stopID string) string {
	for _, s := range c.Stops {
		if s.ID == stopID && s.Label != "" {
			return s.Label
		}
	}
	return stopID
}
