package schedule

import (
	"sort"

	"departureboard.dev/gtfs/model"
)

// A set of service IDs.
type ServiceSet map[string]struct{}

func (s ServiceSet) Contains(serviceID string) bool {
	_, found := s[serviceID]
	return found
}

// Sorted service IDs.
func (s ServiceSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolves which services run on a date, from calendar date ranges
// and calendar_dates exceptions. Day-of-week columns are not used.
type ServiceCalendar struct {
	calendars  []model.Calendar
	exceptions []model.CalendarDate
}

func NewServiceCalendar(calendars []model.Calendar, exceptions []model.CalendarDate) *ServiceCalendar {
	return &ServiceCalendar{
		calendars:  calendars,
		exceptions: exceptions,
	}
}

// Services active on date (YYYYMMDD): services whose calendar range
// includes date, plus those added for date by an exception, minus
// those removed for date by an exception. A removal wins over both a
// calendar range and an addition on the same date.
func (c *ServiceCalendar) ActiveServices(date string) ServiceSet {
	active := ServiceSet{}

	// YYYYMMDD compares correctly as text.
	for _, cal := range c.calendars {
		if cal.StartDate <= date && date <= cal.EndDate {
			active[cal.ServiceID] = struct{}{}
		}
	}

	for _, ex := range c.exceptionsOn(date, model.ExceptionAdded) {
		active[ex.ServiceID] = struct{}{}
	}

	for _, ex := range c.exceptionsOn(date, model.ExceptionRemoved) {
		delete(active, ex.ServiceID)
	}

	return active
}

func (c *ServiceCalendar) exceptionsOn(date string, exceptionType model.ExceptionType) []model.CalendarDate {
	matching := []model.CalendarDate{}
	for _, ex := range c.exceptions {
		if ex.Date == date && ex.ExceptionType == exceptionType {
			matching = append(matching, ex)
		}
	}
	return matching
}

// Earliest and latest date covered by any calendar or exception, as
// YYYYMMDD. Both are empty for an empty calendar.
func (c *ServiceCalendar) DateRange() (string, string) {
	var minDate, maxDate string
	for _, cal := range c.calendars {
		if minDate == "" || cal.StartDate < minDate {
			minDate = cal.StartDate
		}
		if maxDate == "" || cal.EndDate > maxDate {
			maxDate = cal.EndDate
		}
	}
	for _, ex := range c.exceptions {
		if minDate == "" || ex.Date < minDate {
			minDate = ex.Date
		}
		if maxDate == "" || ex.Date > maxDate {
			maxDate = ex.Date
		}
	}
	return minDate, maxDate
}
