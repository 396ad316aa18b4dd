package gtfs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"departureboard.dev/gtfs/model"
	"departureboard.dev/gtfs/schedule"
)

const (
	LineSeparator   = "<br>"
	MissingHeadsign = "N/A"

	fallbackFormat = "Inga avgångar de närmaste %d minuterna, enligt tidtabell"
)

// Departures from each target stop, in target order, within
// [now, now+Window).
//
// Stop times are considered in arrival order. Those with an invalid
// departure time, an unknown trip or a service not running on now's
// date are skipped. Only the first departure per HH:MM is kept, so
// two trips leaving the same minute show up once.
func (s *Static) Departures(now time.Time) []model.StopReport {
	now = now.In(s.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.Location)
	end := now.Add(s.Window)
	active := s.calendar.ActiveServices(today.Format(model.DateFormat))

	reports := make([]model.StopReport, 0, len(s.Targets))
	for _, stopID := range s.Targets {
		reports = append(reports, model.StopReport{
			StopID:     stopID,
			Departures: s.departures(stopID, today, now, end, active),
		})
	}
	return reports
}

func (s *Static) departures(
	stopID string,
	today time.Time,
	start time.Time,
	end time.Time,
	active schedule.ServiceSet,
) []model.Departure {
	departures := []model.Departure{}

	entries := s.stopTimes.EntriesFor(stopID)
	if len(entries) == 0 {
		return departures
	}

	// The index is shared; sort a copy.
	sorted := make([]model.StopTime, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Arrival < sorted[j].Arrival
	})

	seen := map[string]bool{}
	for _, st := range sorted {
		t, err := model.ParseTime(st.Departure)
		if err != nil {
			log.Warn().
				Err(err).
				Str("stop_id", st.StopID).
				Str("trip_id", st.TripID).
				Msg("Skipping stop time")
			s.metrics.ObserveInvalidStopTime()
			continue
		}

		at := t.On(today)
		if at.Before(start) || !at.Before(end) {
			continue
		}

		trip, found := s.trips.Lookup(st.TripID)
		if !found || !active.Contains(trip.ServiceID) {
			continue
		}

		minute := t.HourMinute()
		if seen[minute] {
			continue
		}
		seen[minute] = true

		headsign := st.Headsign
		if headsign == "" {
			headsign = MissingHeadsign
		}

		departures = append(departures, model.Departure{
			StopID:   stopID,
			TripID:   st.TripID,
			Minute:   minute,
			Headsign: headsign,
			Time:     at,
		})
	}

	sort.SliceStable(departures, func(i, j int) bool {
		return departures[i].Minute < departures[j].Minute
	})

	return departures
}

// One report string per target stop, in target order. Each is either
// "HH:MM → headsign" lines joined by LineSeparator or, with nothing
// to show, the fallback message.
func (s *Static) Reports(now time.Time) []string {
	reports := []string{}
	for _, report := range s.Departures(now) {
		reports = append(reports, s.Render(report))
	}
	return reports
}

// Renders a single stop's report.
func (s *Static) Render(report model.StopReport) string {
	s.metrics.ObserveReport(len(report.Departures))

	if len(report.Departures) == 0 {
		return s.Fallback()
	}

	lines := make([]string, 0, len(report.Departures))
	for _, d := range report.Departures {
		lines = append(lines, fmt.Sprintf("%s → %s", d.Minute, d.Headsign))
	}
	return strings.Join(lines, LineSeparator)
}

// The message shown when a stop has no departures in the window.
func (s *Static) Fallback() string {
	return fmt.Sprintf(fallbackFormat, int(s.Window/time.Minute))
}
