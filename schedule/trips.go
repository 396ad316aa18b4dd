package schedule

import (
	"departureboard.dev/gtfs/model"
)

type TripIndex struct {
	trips map[string]model.Trip
}

// Later trips with a repeated trip_id replace earlier ones.
func NewTripIndex(trips []model.Trip) *TripIndex {
	idx := &TripIndex{trips: make(map[string]model.Trip, len(trips))}
	for _, t := range trips {
		idx.trips[t.ID] = t
	}
	return idx
}

func (idx *TripIndex) Lookup(tripID string) (model.Trip, bool) {
	t, found := idx.trips[tripID]
	return t, found
}

func (idx *TripIndex) Len() int {
	return len(idx.trips)
}
