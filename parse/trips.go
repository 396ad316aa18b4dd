package parse

import (
	"departureboard.dev/gtfs/model"
)

const (
	TripsFile      = "trips.txt"
	tripsMinFields = 5
)

// Parses trips.txt. Columns: route_id (0), service_id (1), trip_id (2).
func ParseTrips(src Source) ([]model.Trip, error) {
	trips := []model.Trip{}
	err := ReadTable(src, TripsFile, tripsMinFields, func(p []string) {
		trips = append(trips, model.Trip{
			ID:        p[2],
			RouteID:   p[0],
			ServiceID: p[1],
		})
	})
	return trips, err
}
