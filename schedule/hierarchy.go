// Package schedule holds the read-only indices built from a static
// feed: stop hierarchy, trips, stop times per target stop and the
// service calendar.
//
// All indices are built once and never modified afterwards, so they
// can be shared between goroutines without locking.
package schedule

import (
	"departureboard.dev/gtfs/model"
)

// Maps child stops to their parent station.
type StopHierarchy struct {
	parent map[string]string
}

func NewStopHierarchy(stops []model.Stop) *StopHierarchy {
	h := &StopHierarchy{parent: map[string]string{}}
	for _, s := range stops {
		if s.ParentStation != "" {
			h.parent[s.ID] = s.ParentStation
		}
	}
	return h
}

// Returns the parent station of stopID, if it has one. Resolution is
// a single lookup; grandparents are never followed.
func (h *StopHierarchy) Resolve(stopID string) (string, bool) {
	parent, found := h.parent[stopID]
	return parent, found
}

// Number of stops with a parent.
func (h *StopHierarchy) Len() int {
	return len(h.parent)
}
