package parse

import (
	"departureboard.dev/gtfs/model"
)

const (
	CalendarFile      = "calendar.txt"
	calendarMinFields = 10
)

// Parses calendar.txt. Columns: service_id (0), start_date (8),
// end_date (9). The weekday columns in between are ignored.
func ParseCalendar(src Source) ([]model.Calendar, error) {
	calendars := []model.Calendar{}
	err := ReadTable(src, CalendarFile, calendarMinFields, func(p []string) {
		calendars = append(calendars, model.Calendar{
			ServiceID: p[0],
			StartDate: p[8],
			EndDate:   p[9],
		})
	})
	return calendars, err
}
