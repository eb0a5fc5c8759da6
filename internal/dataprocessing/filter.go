package dataprocessing

import (
	"time"

	"bioinsights/pkg/contracts/domain"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates in either order.
func NewDateRange(a, b time.Time) DateRange {
	a, b = truncateToDate(a), truncateToDate(b)
	if b.Before(a) {
		a, b = b, a
	}
	return DateRange{Start: a, End: b}
}

// Contains reports whether t falls within the range. Null dates never do.
func (r DateRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := truncateToDate(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// FilterStates keeps records whose state is in states. An empty set yields an
// empty result.
func FilterStates(records []domain.BiometricRecord, states []string) []domain.BiometricRecord {
	if len(states) == 0 {
		return []domain.BiometricRecord{}
	}
	allowed := make(map[string]struct{}, len(states))
	for _, s := range states {
		allowed[s] = struct{}{}
	}
	out := make([]domain.BiometricRecord, 0, len(records))
	for _, r := range records {
		if _, ok := allowed[r.State]; ok {
			out = append(out, r)
		}
	}
	return out
}

// FilterDateRange keeps records whose date lies within [start, end]. Reversed
// bounds are swapped.
func FilterDateRange(records []domain.BiometricRecord, start, end time.Time) []domain.BiometricRecord {
	rng := NewDateRange(start, end)
	out := make([]domain.BiometricRecord, 0, len(records))
	for _, r := range records {
		if rng.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// Selection is a dashboard filter. States is always applied; Range is applied
// only when set.
type Selection struct {
	States []string
	Range  *DateRange
}

// Apply returns the records matching the selection, in input order.
func (s Selection) Apply(records []domain.BiometricRecord) []domain.BiometricRecord {
	out := FilterStates(records, s.States)
	if s.Range != nil {
		out = FilterDateRange(out, s.Range.Start, s.Range.End)
	}
	return out
}
