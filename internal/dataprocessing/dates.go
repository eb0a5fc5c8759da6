package dataprocessing

import (
	"strings"
	"time"
)

// Layouts are tried in order. Day-first forms precede month-first ones so
// ambiguous values such as "01-02-2023" resolve to 1 February 2023.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006.1.2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006 3:04 PM",
	"2-1-2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"2/1/2006 3:04:05 PM",
	"2-1-06",
	"2/1/06",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"1/2/2006",
	"1-2-2006",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/06",
}

// ParseDate interprets a raw date cell as a calendar date in UTC. The time of
// day, if any, is discarded. The boolean is false for empty or unparsable
// input, and for dates that collapse to the zero time.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			date := truncateToDate(t)
			if date.IsZero() {
				return time.Time{}, false
			}
			return date, true
		}
	}
	return time.Time{}, false
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
