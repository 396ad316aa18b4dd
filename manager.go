package gtfs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"departureboard.dev/gtfs/clock"
	"departureboard.dev/gtfs/downloader"
	"departureboard.dev/gtfs/metrics"
	"departureboard.dev/gtfs/model"
	"departureboard.dev/gtfs/parse"
)

const (
	DefaultRefreshInterval = 12 * time.Hour
	DefaultFeedTimeout     = 60 * time.Second
	DefaultFeedMaxSize     = 800 << 20 // 800 MB
	DefaultFeedRetries     = 3
)

var ErrNoSnapshot = errors.New("no snapshot loaded")

// Manager holds the active snapshot and replaces it when the feed is
// reloaded. Readers never block: a reload builds a complete new
// Static and swaps it in.
type Manager struct {
	Options         StaticOptions
	Clock           clock.Clock
	Downloader      downloader.Downloader
	Headers         map[string]string
	FeedTimeout     time.Duration
	FeedMaxSize     int
	FeedRetries     uint64
	RefreshInterval time.Duration

	// Backoff between download attempts. Defaults to exponential.
	BackOff func() backoff.BackOff

	static atomic.Pointer[Static]

	// Serializes loads, and guards hash.
	loadMu sync.Mutex
	hash   string
}

func NewManager(opts StaticOptions) *Manager {
	return &Manager{
		Options:         opts,
		Clock:           clock.RealClock{},
		Downloader:      downloader.NewMemoryDownloader(),
		Headers:         map[string]string{},
		FeedTimeout:     DefaultFeedTimeout,
		FeedMaxSize:     DefaultFeedMaxSize,
		FeedRetries:     DefaultFeedRetries,
		RefreshInterval: DefaultRefreshInterval,
		BackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// The active snapshot, or ErrNoSnapshot if nothing has been loaded.
func (m *Manager) Static() (*Static, error) {
	s := m.static.Load()
	if s == nil {
		return nil, ErrNoSnapshot
	}
	return s, nil
}

func (m *Manager) Now() time.Time {
	return m.Clock.Now()
}

// Reports for the current time, as given by the manager's clock.
func (m *Manager) Reports() ([]string, error) {
	s, err := m.Static()
	if err != nil {
		return nil, err
	}
	return s.Reports(m.Now()), nil
}

// Departures for the current time, along with the time used.
func (m *Manager) Departures() (time.Time, []model.StopReport, error) {
	s, err := m.Static()
	if err != nil {
		return time.Time{}, nil, err
	}
	now := m.Now()
	return now, s.Departures(now), nil
}

// Builds a snapshot from src and makes it the active one.
func (m *Manager) LoadSource(src parse.Source) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	m.hash = ""
	return m.load(src)
}

// Loads a feed from a directory or zip file on disk.
func (m *Manager) LoadPath(path string) error {
	src, err := parse.Open(path)
	if err != nil {
		m.Options.Metrics.ObserveFeedLoad(metrics.ResultError, 0)
		return err
	}

	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	m.hash = ""
	return m.load(src)
}

// Downloads a zipped feed and loads it. If the download is identical
// to the one already active, nothing is parsed.
func (m *Manager) LoadURL(ctx context.Context, url string) error {
	body, err := m.download(ctx, url)
	if err != nil {
		m.Options.Metrics.ObserveFeedLoad(metrics.ResultError, 0)
		return fmt.Errorf("downloading feed at %s: %w", url, err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(body))

	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	if hash == m.hash && m.static.Load() != nil {
		log.Debug().Str("url", url).Str("hash", hash).Msg("Feed unchanged")
		m.Options.Metrics.ObserveFeedLoad(metrics.ResultUnchanged, 0)
		return nil
	}

	src, err := parse.Zip(body)
	if err != nil {
		m.Options.Metrics.ObserveFeedLoad(metrics.ResultError, 0)
		return fmt.Errorf("parsing feed at %s: %w", url, err)
	}

	err = m.load(src)
	if err != nil {
		return err
	}
	m.hash = hash

	return nil
}

func (m *Manager) download(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		var err error
		body, err = m.Downloader.Get(ctx, url, m.Headers, downloader.GetOptions{
			Cache:   false,
			Timeout: m.FeedTimeout,
			MaxSize: m.FeedMaxSize,
		})
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Feed download failed")
		}
		var statusErr *downloader.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(m.BackOff(), m.FeedRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}

	return body, nil
}

// Must hold loadMu.
func (m *Manager) load(src parse.Source) error {
	started := time.Now()

	static, err := NewStatic(src, m.Options)
	if err != nil {
		m.Options.Metrics.ObserveFeedLoad(metrics.ResultError, 0)
		return fmt.Errorf("loading feed: %w", err)
	}

	m.static.Store(static)

	m.Options.Metrics.ObserveFeedLoad(metrics.ResultOK, time.Since(started))
	m.Options.Metrics.ObserveSnapshot(static.StopTimeTotal(), static.LoadedAt)

	startDate, endDate := static.CalendarRange()
	log.Info().
		Int("stop_times", static.StopTimeTotal()).
		Int("warnings", len(static.Warnings)).
		Str("calendar_start", startDate).
		Str("calendar_end", endDate).
		Dur("took", time.Since(started)).
		Msg("Loaded feed")

	return nil
}

// Reloads the feed at url every RefreshInterval until ctx is done.
// Failed reloads are logged and keep the previous snapshot active.
func (m *Manager) Run(ctx context.Context, url string) error {
	ticker := time.NewTicker(m.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.LoadURL(ctx, url); err != nil {
				log.Error().Err(err).Str("url", url).Msg("Refreshing feed")
			}
		}
	}
}
