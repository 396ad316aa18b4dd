package parse

import (
	"errors"
	"io/fs"

	"departureboard.dev/gtfs/model"
)

const (
	StopTimesFile          = "stop_times.txt"
	ExtractedStopTimesFile = "stop_times_extracted.txt"
	stopTimesMinFields     = 6
)

// Parses stop times, calling fn for each. Columns: trip_id (0),
// arrival_time (1), departure_time (2), stop_id (3), stop_headsign
// (5).
//
// A pre-filtered stop_times_extracted.txt (see ExtractStopTimes) is
// preferred over the full stop_times.txt when the feed has one.
func ParseStopTimes(src Source, fn func(model.StopTime)) error {
	visit := func(p []string) {
		fn(model.StopTime{
			TripID:    p[0],
			Arrival:   p[1],
			Departure: p[2],
			StopID:    p[3],
			Headsign:  p[5],
		})
	}

	err := ReadTable(src, ExtractedStopTimesFile, stopTimesMinFields, visit)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return ReadTable(src, StopTimesFile, stopTimesMinFields, visit)
}
