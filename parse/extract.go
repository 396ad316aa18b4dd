package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"departureboard.dev/gtfs/model"
)

// Header mapped stop_times.txt row. Field order matches the columns
// ParseStopTimes expects, so marshaling these produces a table it can
// read.
type StopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopSequence  string `csv:"stop_sequence"`
	Headsign      string `csv:"stop_headsign"`
	PickupType    string `csv:"pickup_type"`
	DropOffType   string `csv:"drop_off_type"`
}

// Copies the stop_times rows for which keep(stop_id) holds from a
// full stop_times.txt into out, written with a header and the column
// order ParseStopTimes relies on. Columns in the input are located by
// header name. Kept rows must have valid arrival and departure
// times. Returns number of rows written.
func ExtractStopTimes(in io.Reader, out io.Writer, keep func(stopID string) bool) (int, error) {
	kept := []*StopTimeCSV{}

	row := 0
	var rowErr error
	decoder := gocsv.NewSimpleDecoderFromCSVReader(NewCSVReader(in))
	err := gocsv.UnmarshalDecoderToCallback(decoder, func(st StopTimeCSV) {
		row += 1
		if rowErr != nil {
			return
		}
		if st.StopID == "" || !keep(st.StopID) {
			return
		}

		for _, t := range []string{st.ArrivalTime, st.DepartureTime} {
			if _, err := model.ParseTime(t); err != nil {
				rowErr = errors.Wrapf(err, "stop_id '%s' (row %d)", st.StopID, row)
				return
			}
		}

		kept = append(kept, &st)
	})
	if err != nil {
		return 0, errors.Wrap(err, "unmarshaling stop_times csv")
	}
	if rowErr != nil {
		return 0, rowErr
	}

	err = gocsv.Marshal(kept, out)
	if err != nil {
		return 0, fmt.Errorf("writing extracted stop_times: %w", err)
	}

	return len(kept), nil
}
