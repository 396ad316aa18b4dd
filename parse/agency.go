package parse

import (
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
)

const AgencyFile = "agency.txt"

type AgencyCSV struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	Timezone string `csv:"agency_timezone"`
}

// Returns the feed's timezone, as given by agency.txt.
func ParseAgencyTimezone(src Source) (string, error) {
	rc, err := src.Open(AgencyFile)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", ErrTableUnavailable, AgencyFile, err)
	}
	defer rc.Close()

	agencyCsv := []*AgencyCSV{}
	if err := gocsv.UnmarshalCSV(NewCSVReader(rc), &agencyCsv); err != nil {
		return "", fmt.Errorf("unmarshaling agency csv: %w", err)
	}

	if len(agencyCsv) == 0 {
		return "", fmt.Errorf("no agency record found")
	}

	// "If multiple agencies are specified in the dataset, each
	// must have the same agency_timezone."
	agencyTz := map[string]bool{}
	for _, a := range agencyCsv {
		agencyTz[a.Timezone] = true
	}
	if len(agencyTz) != 1 {
		return "", fmt.Errorf("multiple agency_timezone")
	}

	tz := agencyCsv[0].Timezone
	if tz == "" {
		return "", fmt.Errorf("missing agency_timezone")
	}
	_, err = time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("agency_timezone '%s' is invalid: %w", tz, err)
	}

	return tz, nil
}
