package model

import (
	"time"
)

// Holds all external facing types and constants.

// A stop from stops.txt. Only the parent link matters to the board,
// everything else in the table is discarded.
type Stop struct {
	ID            string
	ParentStation string
}

type Trip struct {
	ID        string
	RouteID   string
	ServiceID string
}

// A scheduled call at a stop. Arrival and Departure hold the raw
// HH:MM:SS text from the feed; hours may exceed 23.
type StopTime struct {
	TripID    string
	StopID    string
	Arrival   string
	Departure string
	Headsign  string
}

// Date range during which a service runs. Dates are YYYYMMDD.
type Calendar struct {
	ServiceID string
	StartDate string
	EndDate   string
}

type ExceptionType int8

const (
	ExceptionAdded   ExceptionType = 1
	ExceptionRemoved ExceptionType = 2
)

func (e ExceptionType) String() string {
	switch e {
	case ExceptionAdded:
		return "added"
	case ExceptionRemoved:
		return "removed"
	}
	return "unknown"
}

// A per-date override from calendar_dates.txt.
type CalendarDate struct {
	ServiceID     string
	Date          string
	ExceptionType ExceptionType
}

// A departure that made it onto the board.
type Departure struct {
	StopID   string
	TripID   string
	Minute   string
	Headsign string
	Time     time.Time
}

// All departures for one target stop, ordered by Minute.
type StopReport struct {
	StopID     string
	Departures []Departure
}
