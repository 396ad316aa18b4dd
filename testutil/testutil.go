package testutil

// Helpers for tests.

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"departureboard.dev/gtfs"
	"departureboard.dev/gtfs/parse"
)

// Zips a feed given as filename -> lines.
func BuildZip(
	t testing.TB,
	files map[string][]string,
) []byte {

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// An in-memory Source for a feed given as filename -> lines.
func BuildSource(files map[string][]string) parse.Source {
	fsys := fstest.MapFS{}
	for filename, content := range files {
		fsys[filename] = &fstest.MapFile{Data: []byte(strings.Join(content, "\n"))}
	}
	return parse.FS(fsys)
}

// Fills in an agency and empty tables for anything missing, so
// tests only need to spell out what they care about.
func CompleteFeed(files map[string][]string) map[string][]string {
	complete := map[string][]string{
		parse.AgencyFile: {
			"agency_id,agency_name,agency_url,agency_timezone",
			"SL,Storstockholms Lokaltrafik,https://sl.se,Europe/Stockholm",
		},
		parse.StopsFile:         {"stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station"},
		parse.TripsFile:         {"route_id,service_id,trip_id,trip_headsign,direction_id"},
		parse.StopTimesFile:     {"trip_id,arrival_time,departure_time,stop_id,stop_sequence,stop_headsign"},
		parse.CalendarFile:      {"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date"},
		parse.CalendarDatesFile: {"service_id,date,exception_type"},
	}
	for filename, content := range files {
		complete[filename] = content
	}
	return complete
}

// Builds a snapshot from a (possibly partial) feed.
func BuildStatic(
	t testing.TB,
	files map[string][]string,
	opts gtfs.StaticOptions,
) *gtfs.Static {

	static, err := gtfs.NewStatic(BuildSource(CompleteFeed(files)), opts)
	require.NoError(t, err)

	return static
}
