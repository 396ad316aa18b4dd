// Package metrics exposes Prometheus metrics for the departure board.
//
// All methods are safe to call on a nil *Collector, so callers that
// don't care about metrics can simply pass nil.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK        = "ok"
	ResultUnchanged = "unchanged"
	ResultError     = "error"
)

type Collector struct {
	reg *prometheus.Registry

	ReportsGenerated prometheus.Counter
	DeparturesListed prometheus.Counter
	Fallbacks        prometheus.Counter
	InvalidStopTimes prometheus.Counter

	FeedLoads        *prometheus.CounterVec // result label: ok|unchanged|error
	LoadDuration     prometheus.Histogram
	IndexedStopTimes prometheus.Gauge
	SnapshotLoadedAt prometheus.Gauge // unix seconds
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "departureboard_reports_generated_total",
			Help: "Total per-stop reports generated.",
		}),
		DeparturesListed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "departureboard_departures_listed_total",
			Help: "Total departure lines rendered.",
		}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "departureboard_fallbacks_total",
			Help: "Total reports rendered as the no-departures fallback.",
		}),
		InvalidStopTimes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "departureboard_invalid_stop_times_total",
			Help: "Total stop times skipped due to an unparseable departure time.",
		}),
		FeedLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "departureboard_feed_loads_total",
			Help: "Feed load attempts by result.",
		}, []string{"result"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "departureboard_feed_load_duration_seconds",
			Help:    "Time spent parsing and indexing a feed.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		IndexedStopTimes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "departureboard_indexed_stop_times",
			Help: "Stop times held in the active snapshot.",
		}),
		SnapshotLoadedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "departureboard_snapshot_loaded_timestamp_seconds",
			Help: "Unix time the active snapshot was loaded.",
		}),
	}

	reg.MustRegister(
		c.ReportsGenerated, c.DeparturesListed, c.Fallbacks, c.InvalidStopTimes,
		c.FeedLoads, c.LoadDuration, c.IndexedStopTimes, c.SnapshotLoadedAt,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Records one rendered report with n departures. n == 0 counts as a
// fallback.
func (c *Collector) ObserveReport(n int) {
	if c == nil {
		return
	}
	c.ReportsGenerated.Inc()
	if n == 0 {
		c.Fallbacks.Inc()
		return
	}
	c.DeparturesListed.Add(float64(n))
}

func (c *Collector) ObserveInvalidStopTime() {
	if c == nil {
		return
	}
	c.InvalidStopTimes.Inc()
}

func (c *Collector) ObserveFeedLoad(result string, took time.Duration) {
	if c == nil {
		return
	}
	c.FeedLoads.WithLabelValues(result).Inc()
	if result == ResultOK {
		c.LoadDuration.Observe(took.Seconds())
	}
}

func (c *Collector) ObserveSnapshot(stopTimes int, loadedAt time.Time) {
	if c == nil {
		return
	}
	c.IndexedStopTimes.Set(float64(stopTimes))
	c.SnapshotLoadedAt.Set(float64(loadedAt.Unix()))
}
