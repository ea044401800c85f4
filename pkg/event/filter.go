package event

import (
	"time"
)

// dateLayout is the only accepted calendar-date format for filter bounds.
const dateLayout = "2006-01-02"

// Filter narrows a listing. All fields are optional and combine with AND.
// Start/End are resolved bounds on modified_at: Start is inclusive, End is
// exclusive (the day after the requested end date, so the entire end date
// is included).
type Filter struct {
	Creator   string
	EventType string
	Start     *time.Time
	End       *time.Time
}

// ParseFilter builds a Filter from raw query-string values. Dates are naive
// local time with no timezone conversion. A malformed date is a client
// error, never silently ignored.
func ParseFilter(creator, eventType, startDate, endDate string) (Filter, error) {
	f := Filter{Creator: creator, EventType: eventType}

	if startDate != "" {
		t, err := time.ParseInLocation(dateLayout, startDate, time.Local)
		if err != nil {
			return Filter{}, &ValidationError{Field: "start_date", Reason: "must be a YYYY-MM-DD date"}
		}
		f.Start = &t
	}

	if endDate != "" {
		t, err := time.ParseInLocation(dateLayout, endDate, time.Local)
		if err != nil {
			return Filter{}, &ValidationError{Field: "end_date", Reason: "must be a YYYY-MM-DD date"}
		}
		end := t.AddDate(0, 0, 1)
		f.End = &end
	}

	return f, nil
}
