package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"departureboard.dev/gtfs"
	"departureboard.dev/gtfs/clock"
	"departureboard.dev/gtfs/metrics"
	"departureboard.dev/gtfs/server"
	gtfstest "departureboard.dev/gtfs/testutil"
)

var labels = map[string]string{
	"9022001004513001": "Årstadal mot Solna station",
	"9022001004513002": "Årstadal mot Sickla",
}

func stockholm(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)
	return loc
}

func boardFeed() map[string][]string {
	return map[string][]string{
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"weekday,1,1,1,1,1,0,0,20250101,20251231",
		},
		"trips.txt": {
			"route_id,service_id,trip_id,trip_headsign,direction_id",
			"30,weekday,t1,Solna station,0",
			"30,weekday,t2,Solna station,0",
			"30,weekday,t3,Tom & Jerry <3,0",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence,stop_headsign",
			"t1,10:35:00,10:35:00,9022001004513001,1,Solna station",
			"t2,10:41:00,10:41:00,9022001004513001,1,Solna station",
			"t3,10:38:00,10:38:00,9022001004513002,1,Tom & Jerry <3",
		},
	}
}

func newTestServer(t *testing.T, loaded bool, opts server.Options) (*server.Server, *gtfs.Manager) {
	m := gtfs.NewManager(gtfs.StaticOptions{
		Targets:  []string{"9022001004513001", "9022001004513002"},
		Location: stockholm(t),
		Metrics:  opts.Metrics,
	})
	m.Clock = clock.NewMockClock(time.Date(2025, 8, 6, 10, 30, 0, 0, stockholm(t)))

	if loaded {
		require.NoError(t, m.LoadSource(gtfstest.BuildSource(gtfstest.CompleteFeed(boardFeed()))))
	}

	if opts.Label == nil {
		opts.Label = func(stopID string) string {
			if label, found := labels[stopID]; found {
				return label
			}
			return stopID
		}
	}

	return server.New(m, opts), m
}

func get(t *testing.T, s *server.Server, target string) (int, string) {
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, true, server.Options{})

	status, body := get(t, s, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "2025-08-06 10:30")
	assert.Contains(t, body, "Årstadal mot Solna station")
	assert.Contains(t, body, "10:35 → Solna station<br>10:41 → Solna station")
	assert.Contains(t, body, "Årstadal mot Sickla")
	assert.NotContains(t, body, `class="dark"`)

	// Feed text is escaped
	assert.Contains(t, body, "10:38 → Tom &amp; Jerry &lt;3")
	assert.NotContains(t, body, "Jerry <3")
}

func TestIndexDarkMode(t *testing.T) {
	s, _ := newTestServer(t, true, server.Options{})

	for _, tc := range []struct {
		query string
		dark  bool
	}{
		{"/?darkMode=true", true},
		{"/?darkMode=false", false},
		{"/?darkMode=nonsense", false},
		{"/", false},
	} {
		t.Run(tc.query, func(t *testing.T) {
			status, body := get(t, s, tc.query)
			assert.Equal(t, http.StatusOK, status)
			if tc.dark {
				assert.Contains(t, body, `<body class="dark">`)
			} else {
				assert.Contains(t, body, "<body>")
			}
		})
	}
}

func TestReports(t *testing.T) {
	s, _ := newTestServer(t, true, server.Options{})

	status, body := get(t, s, "/api/reports")
	require.Equal(t, http.StatusOK, status)

	var resp struct {
		Time  time.Time `json:"time"`
		Stops []struct {
			StopID     string `json:"stop_id"`
			Label      string `json:"label"`
			Report     string `json:"report"`
			Departures []struct {
				TripID   string    `json:"trip_id"`
				Minute   string    `json:"minute"`
				Headsign string    `json:"headsign"`
				Time     time.Time `json:"time"`
			} `json:"departures"`
		} `json:"stops"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.True(t, resp.Time.Equal(time.Date(2025, 8, 6, 10, 30, 0, 0, stockholm(t))))
	require.Len(t, resp.Stops, 2)

	assert.Equal(t, "9022001004513001", resp.Stops[0].StopID)
	assert.Equal(t, "Årstadal mot Solna station", resp.Stops[0].Label)
	assert.Equal(t, "10:35 → Solna station<br>10:41 → Solna station", resp.Stops[0].Report)
	require.Len(t, resp.Stops[0].Departures, 2)
	assert.Equal(t, "t1", resp.Stops[0].Departures[0].TripID)
	assert.Equal(t, "10:35", resp.Stops[0].Departures[0].Minute)

	assert.Equal(t, "10:38 → Tom & Jerry <3", resp.Stops[1].Report)
}

func TestReportsFallback(t *testing.T) {
	s, m := newTestServer(t, true, server.Options{})
	m.Clock = clock.NewMockClock(time.Date(2025, 8, 6, 23, 0, 0, 0, stockholm(t)))

	status, body := get(t, s, "/api/reports")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Inga avgångar de närmaste 15 minuterna, enligt tidtabell")
}

func TestNoSnapshot(t *testing.T) {
	s, _ := newTestServer(t, false, server.Options{})

	for _, target := range []string{"/", "/api/reports", "/healthz"} {
		t.Run(target, func(t *testing.T) {
			status, body := get(t, s, target)
			assert.Equal(t, http.StatusServiceUnavailable, status)
			assert.Contains(t, body, gtfs.ErrNoSnapshot.Error())
		})
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, true, server.Options{})

	status, body := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, status)

	var resp struct {
		Status    string   `json:"status"`
		StopTimes int      `json:"stop_times"`
		Warnings  []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.StopTimes)
	assert.Empty(t, resp.Warnings)
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t, true, server.Options{Metrics: metrics.NewCollector()})

	status, _ := get(t, s, "/api/reports")
	require.Equal(t, http.StatusOK, status)

	status, body := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "departureboard_reports_generated_total 2")
	assert.Contains(t, body, "departureboard_departures_listed_total 3")
	assert.Contains(t, body, `departureboard_feed_loads_total{result="ok"} 1`)
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, true, server.Options{RateLimit: 1, RateBurst: 2})

	status, _ := get(t, s, "/api/reports")
	assert.Equal(t, http.StatusOK, status)
	status, _ = get(t, s, "/api/reports")
	assert.Equal(t, http.StatusOK, status)
	status, body := get(t, s, "/api/reports")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, "rate limit exceeded")

	// The page itself isn't limited
	status, _ = get(t, s, "/")
	assert.Equal(t, http.StatusOK, status)
}
