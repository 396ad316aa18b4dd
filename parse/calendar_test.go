package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"departureboard.dev/gtfs/model"
)

func TestParseCalendar(t *testing.T) {
	for _, tc := range []struct {
		name      string
		content   string
		calendars []model.Calendar
	}{
		{
			"minimal",
			`
service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date
s1,0,0,0,0,0,0,0,20250801,20251231`,
			[]model.Calendar{{ServiceID: "s1", StartDate: "20250801", EndDate: "20251231"}},
		},

		{
			"weekday columns ignored",
			`
service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date
s1,1,1,1,1,1,0,0,20250101,20250630
s2,0,0,0,0,0,1,1,20250701,20251231`,
			[]model.Calendar{
				{ServiceID: "s1", StartDate: "20250101", EndDate: "20250630"},
				{ServiceID: "s2", StartDate: "20250701", EndDate: "20251231"},
			},
		},

		{
			"malformed row skipped",
			`
service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date
s1,0,0,0,0,0,0,0,20250801
s2,0,0,0,0,0,0,0,20250801,20250901`,
			[]model.Calendar{{ServiceID: "s2", StartDate: "20250801", EndDate: "20250901"}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := sourceFromFiles(map[string]string{"calendar.txt": tc.content})
			calendars, err := ParseCalendar(src)
			require.NoError(t, err)
			assert.Equal(t, tc.calendars, calendars)
		})
	}
}
