package schedule

import (
	"departureboard.dev/gtfs/model"
)

// Stop times grouped by target stop. Stop times for stops outside
// the target set are dropped while building.
type StopTimeIndex struct {
	targets map[string]bool
	byStop  map[string][]model.StopTime
	count   int
}

// Collects stop times into a StopTimeIndex. Use Add for each stop
// time, then Build.
type StopTimeIndexBuilder struct {
	idx       *StopTimeIndex
	hierarchy *StopHierarchy
}

func NewStopTimeIndexBuilder(hierarchy *StopHierarchy, targets []string) *StopTimeIndexBuilder {
	idx := &StopTimeIndex{
		targets: map[string]bool{},
		byStop:  map[string][]model.StopTime{},
	}
	for _, t := range targets {
		idx.targets[t] = true
	}
	return &StopTimeIndexBuilder{idx: idx, hierarchy: hierarchy}
}

// Stop ID a stop time is attributed to: the parent station when that
// is a target, otherwise the stop itself when it is a target.
func (b *StopTimeIndexBuilder) resolve(stopID string) (string, bool) {
	if parent, found := b.hierarchy.Resolve(stopID); found && b.idx.targets[parent] {
		return parent, true
	}
	if b.idx.targets[stopID] {
		return stopID, true
	}
	return "", false
}

// Adds st under its resolved target stop. Returns false if st was
// discarded.
func (b *StopTimeIndexBuilder) Add(st model.StopTime) bool {
	stopID, ok := b.resolve(st.StopID)
	if !ok {
		return false
	}
	b.idx.byStop[stopID] = append(b.idx.byStop[stopID], st)
	b.idx.count++
	return true
}

func (b *StopTimeIndexBuilder) Build() *StopTimeIndex {
	idx := b.idx
	b.idx = nil
	return idx
}

func NewStopTimeIndex(stopTimes []model.StopTime, hierarchy *StopHierarchy, targets []string) *StopTimeIndex {
	b := NewStopTimeIndexBuilder(hierarchy, targets)
	for _, st := range stopTimes {
		b.Add(st)
	}
	return b.Build()
}

// Stop times for a target stop in the order they were added. The
// returned slice is shared; callers must not modify it.
func (idx *StopTimeIndex) EntriesFor(stopID string) []model.StopTime {
	return idx.byStop[stopID]
}

// Total number of stop times indexed.
func (idx *StopTimeIndex) Len() int {
	return idx.count
}
