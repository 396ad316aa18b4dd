package gtfs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"departureboard.dev/gtfs"
	"departureboard.dev/gtfs/parse"
	gtfstest "departureboard.dev/gtfs/testutil"
)

func TestNewStaticAgencyTimezone(t *testing.T) {
	static := gtfstest.BuildStatic(t, map[string][]string{}, gtfs.StaticOptions{
		Targets: targets,
	})

	assert.Equal(t, "Europe/Stockholm", static.Location.String())
	assert.Equal(t, gtfs.DefaultWindow, static.Window)
	assert.Equal(t, targets, static.Targets)
	assert.Empty(t, static.Warnings)
	assert.NoError(t, static.Err())
}

func TestNewStaticConfiguredTimezone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	static := gtfstest.BuildStatic(t, map[string][]string{}, gtfs.StaticOptions{
		Targets:  targets,
		Location: la,
	})

	assert.Equal(t, la, static.Location)
}

func TestNewStaticNoTimezone(t *testing.T) {
	src := gtfstest.BuildSource(map[string][]string{
		"stops.txt": boardStops(),
	})

	_, err := gtfs.NewStatic(src, gtfs.StaticOptions{Targets: targets})
	assert.ErrorIs(t, err, parse.ErrTableUnavailable)
}

func TestNewStaticMissingTables(t *testing.T) {
	// Nothing but stops. Every other table is a warning, and the
	// board falls back for all stops.
	src := gtfstest.BuildSource(map[string][]string{
		"stops.txt": boardStops(),
	})

	static, err := gtfs.NewStatic(src, gtfs.StaticOptions{
		Targets:  targets,
		Location: stockholm(t),
	})
	require.NoError(t, err)

	assert.Len(t, static.Warnings, 4)
	for _, w := range static.Warnings {
		assert.ErrorIs(t, w, parse.ErrTableUnavailable)
	}
	assert.ErrorIs(t, static.Err(), parse.ErrTableUnavailable)

	assert.Equal(t, []string{fallback, fallback, fallback, fallback}, static.Reports(boardNow(t)))
}

func TestNewStaticStopTimeCounts(t *testing.T) {
	static := buildBoard(t, boardFeed(
		[]string{"30,weekday,t1,Solna station,0"},
		[]string{
			"t1,10:35:00,10:35:00,9022001004513001,1,Solna station",
			"t1,10:45:00,10:45:00,9022001004513001,1,Solna station",
			"t1,10:55:00,10:55:00,9022001013905002,1,Solna station",
			"t1,11:05:00,11:05:00,9022001099999999,1,Solna station",
			"short,row",
		},
	))

	assert.Equal(t, 2, static.StopTimeCount(tramFromLiljeholmen))
	assert.Equal(t, 0, static.StopTimeCount(tramToLiljeholmen))
	assert.Equal(t, 1, static.StopTimeCount(busToLiljeholmen))
	assert.Equal(t, 3, static.StopTimeTotal())
}

func TestNewStaticPrefersExtractedStopTimes(t *testing.T) {
	files := boardFeed(
		[]string{"30,weekday,t1,Solna station,0"},
		[]string{"t1,10:35:00,10:35:00,9022001004513001,1,From full table"},
	)
	files[parse.ExtractedStopTimesFile] = []string{
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence,stop_headsign",
		"t1,10:36:00,10:36:00,9022001004513001,1,From extracted table",
	}

	static := buildBoard(t, files)
	assert.Equal(t, "10:36 → From extracted table", static.Reports(boardNow(t))[0])
}

func TestActiveServicesAndCalendarRange(t *testing.T) {
	static := buildBoard(t, boardFeed(nil, nil))

	assert.Equal(t, []string{"extra", "weekday"}, static.ActiveServices(boardNow(t)).IDs())

	// 23:30 UTC on the 5th is already the 6th in Stockholm
	assert.Equal(t,
		[]string{"extra", "weekday"},
		static.ActiveServices(time.Date(2025, 8, 5, 23, 30, 0, 0, time.UTC)).IDs(),
	)

	assert.Equal(t,
		[]string{"weekday", "winter"},
		static.ActiveServices(time.Date(2025, 2, 1, 12, 0, 0, 0, stockholm(t))).IDs(),
	)

	startDate, endDate := static.CalendarRange()
	assert.Equal(t, "20250101", startDate)
	assert.Equal(t, "20251231", endDate)
}

func TestNewStaticZip(t *testing.T) {
	buf := gtfstest.BuildZip(t, gtfstest.CompleteFeed(boardFeed(
		[]string{"30,weekday,t1,Solna station,0"},
		[]string{"t1,10:35:00,10:35:00,9022001004513001,1,Solna station"},
	)))

	src, err := parse.Zip(buf)
	require.NoError(t, err)

	static, err := gtfs.NewStatic(src, gtfs.StaticOptions{Targets: targets})
	require.NoError(t, err)
	assert.Equal(t, "10:35 → Solna station", static.Reports(boardNow(t))[0])
}
