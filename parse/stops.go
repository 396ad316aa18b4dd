package parse

import (
	"departureboard.dev/gtfs/model"
)

const (
	StopsFile      = "stops.txt"
	stopsMinFields = 6
)

// Parses stops.txt. Columns: stop_id (0), parent_station (5).
func ParseStops(src Source) ([]model.Stop, error) {
	stops := []model.Stop{}
	err := ReadTable(src, StopsFile, stopsMinFields, func(p []string) {
		stops = append(stops, model.Stop{
			ID:            p[0],
			ParentStation: p[5],
		})
	})
	return stops, err
}
