package gtfs

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"departureboard.dev/gtfs/metrics"
	"departureboard.dev/gtfs/model"
	"departureboard.dev/gtfs/parse"
	"departureboard.dev/gtfs/schedule"
)

const DefaultWindow = 15 * time.Minute

type StaticOptions struct {
	// Stops to report on, in display order.
	Targets []string

	// Timezone the schedule is evaluated in. If nil, the
	// agency.txt timezone is used.
	Location *time.Location

	// Length of the departure window. Defaults to DefaultWindow.
	Window time.Duration

	Metrics *metrics.Collector
}

// Static is an immutable snapshot of a static feed, indexed for the
// configured target stops. It is safe for concurrent use.
type Static struct {
	Targets  []string
	Location *time.Location
	Window   time.Duration

	// Tables that could not be read. These contributed no records
	// but did not prevent the snapshot from being built.
	Warnings []error

	LoadedAt time.Time

	hierarchy *schedule.StopHierarchy
	trips     *schedule.TripIndex
	stopTimes *schedule.StopTimeIndex
	calendar  *schedule.ServiceCalendar
	metrics   *metrics.Collector
}

// Loads and indexes the feed in src.
//
// Missing or unreadable tables are recorded in Static.Warnings. An
// error is only returned if no timezone could be determined.
func NewStatic(src parse.Source, opts StaticOptions) (*Static, error) {
	location := opts.Location
	if location == nil {
		tz, err := parse.ParseAgencyTimezone(src)
		if err != nil {
			return nil, fmt.Errorf("getting timezone: %w", err)
		}
		location, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("loading timezone: %w", err)
		}
	}

	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}

	s := &Static{
		Targets:  append([]string{}, opts.Targets...),
		Location: location,
		Window:   window,
		LoadedAt: time.Now(),
		metrics:  opts.Metrics,
	}

	warn := func(err error) {
		log.Warn().Err(err).Msg("Feed table unavailable")
		s.Warnings = append(s.Warnings, err)
	}

	stops, err := parse.ParseStops(src)
	if err != nil {
		warn(fmt.Errorf("parsing stops: %w", err))
	}
	s.hierarchy = schedule.NewStopHierarchy(stops)

	trips, err := parse.ParseTrips(src)
	if err != nil {
		warn(fmt.Errorf("parsing trips: %w", err))
	}
	s.trips = schedule.NewTripIndex(trips)

	builder := schedule.NewStopTimeIndexBuilder(s.hierarchy, s.Targets)
	err = parse.ParseStopTimes(src, func(st model.StopTime) {
		builder.Add(st)
	})
	if err != nil {
		warn(fmt.Errorf("parsing stop times: %w", err))
	}
	s.stopTimes = builder.Build()

	calendars, err := parse.ParseCalendar(src)
	if err != nil {
		warn(fmt.Errorf("parsing calendar: %w", err))
	}
	exceptions, err := parse.ParseCalendarDates(src)
	if err != nil {
		warn(fmt.Errorf("parsing calendar dates: %w", err))
	}
	s.calendar = schedule.NewServiceCalendar(calendars, exceptions)

	log.Debug().
		Int("stops_with_parent", s.hierarchy.Len()).
		Int("trips", s.trips.Len()).
		Int("stop_times", s.stopTimes.Len()).
		Int("calendars", len(calendars)).
		Int("calendar_dates", len(exceptions)).
		Str("timezone", location.String()).
		Msg("Indexed feed")

	return s, nil
}

// All load warnings joined into one error, or nil.
func (s *Static) Err() error {
	return errors.Join(s.Warnings...)
}

// Number of stop times indexed for a target stop.
func (s *Static) StopTimeCount(stopID string) int {
	return len(s.stopTimes.EntriesFor(stopID))
}

// Total number of stop times indexed.
func (s *Static) StopTimeTotal() int {
	return s.stopTimes.Len()
}

// Services active on the service date of t, in the snapshot's
// timezone.
func (s *Static) ActiveServices(t time.Time) schedule.ServiceSet {
	return s.calendar.ActiveServices(t.In(s.Location).Format(model.DateFormat))
}

// First and last date covered by the feed's calendars, YYYYMMDD.
func (s *Static) CalendarRange() (string, string) {
	return s.calendar.DateRange()
}
