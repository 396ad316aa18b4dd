package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the GTFS YYYYMMDD date layout.
const DateFormat = "20060102"

var ErrInvalidTimeFormat = errors.New("invalid GTFS time format")

// Time is a GTFS stop time: an offset from the start of the service
// day. Hour can be 24 or more for trips running past midnight.
type Time struct {
	Hour   int
	Minute int
	Second int
}

// Parses a HH:MM:SS GTFS time. Errors wrap ErrInvalidTimeFormat.
func ParseTime(s string) (Time, error) {
	split := strings.Split(s, ":")
	if len(split) != 3 {
		return Time{}, fmt.Errorf("%w: found %d parts in '%s'", ErrInvalidTimeFormat, len(split), s)
	}

	hms := [3]int{}
	for i, str := range split {
		j, err := strconv.Atoi(str)
		if err != nil {
			return Time{}, fmt.Errorf("%w: non-integer in '%s' pos %d", ErrInvalidTimeFormat, s, i)
		}
		hms[i] = j
	}

	if hms[0] < 0 || hms[0] > 99 {
		return Time{}, fmt.Errorf("%w: invalid hour in '%s'", ErrInvalidTimeFormat, s)
	}
	if hms[1] < 0 || hms[1] > 59 {
		return Time{}, fmt.Errorf("%w: invalid minute in '%s'", ErrInvalidTimeFormat, s)
	}
	if hms[2] < 0 || hms[2] > 59 {
		return Time{}, fmt.Errorf("%w: invalid second in '%s'", ErrInvalidTimeFormat, s)
	}

	return Time{Hour: hms[0], Minute: hms[1], Second: hms[2]}, nil
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// HourMinute is the HH:MM part, without rollover. "25:45:00" gives
// "25:45".
func (t Time) HourMinute() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On places t on the given service date. Hours of 24 and above land on
// the following day with the hour taken mod 24, so 25:45 on D is 01:45
// on D+1 and 48:30 on D is 00:30 on D+1.
func (t Time) On(date time.Time) time.Time {
	days := 0
	if t.Hour >= 24 {
		days = 1
	}
	return time.Date(
		date.Year(), date.Month(), date.Day()+days,
		t.Hour%24, t.Minute, t.Second, 0,
		date.Location(),
	)
}
