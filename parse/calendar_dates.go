package parse

import (
	"departureboard.dev/gtfs/model"
)

const (
	CalendarDatesFile      = "calendar_dates.txt"
	calendarDatesMinFields = 3
)

// Parses calendar_dates.txt. Columns: service_id (0), date (1),
// exception_type (2). Rows with an exception_type other than 1 or 2
// are dropped.
func ParseCalendarDates(src Source) ([]model.CalendarDate, error) {
	dates := []model.CalendarDate{}
	err := ReadTable(src, CalendarDatesFile, calendarDatesMinFields, func(p []string) {
		var exceptionType model.ExceptionType
		switch p[2] {
		case "1":
			exceptionType = model.ExceptionAdded
		case "2":
			exceptionType = model.ExceptionRemoved
		default:
			return
		}
		dates = append(dates, model.CalendarDate{
			ServiceID:     p[0],
			Date:          p[1],
			ExceptionType: exceptionType,
		})
	})
	return dates, err
}
