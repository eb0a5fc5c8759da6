package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bioinsights/internal/shared/testutil"
	"bioinsights/pkg/contracts/domain"
)

func TestFilterDateRange(t *testing.T) {
	records := testutil.ThreeRowRecords()

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{name: "covering range", start: testutil.Date(2023, time.January, 1), end: testutil.Date(2023, time.February, 1), want: 3},
		{name: "reversed range is swapped", start: testutil.Date(2023, time.February, 1), end: testutil.Date(2023, time.January, 1), want: 3},
		{name: "single day inclusive", start: testutil.Date(2023, time.January, 6), end: testutil.Date(2023, time.January, 6), want: 1},
		{name: "bounds with time of day", start: time.Date(2023, time.January, 5, 18, 0, 0, 0, time.UTC), end: time.Date(2023, time.January, 6, 1, 0, 0, 0, time.UTC), want: 2},
		{name: "no overlap", start: testutil.Date(2024, time.January, 1), end: testutil.Date(2024, time.December, 31), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, FilterDateRange(records, tt.start, tt.end), tt.want)
		})
	}
}

func TestFilterDateRange_ExcludesNullDates(t *testing.T) {
	records := append(testutil.ThreeRowRecords(), domain.BiometricRecord{State: "A", Age5To17: 9})

	got := FilterDateRange(records, time.Time{}, testutil.Date(2100, time.January, 1))

	assert.Len(t, got, 3)
}

func TestNewDateRange(t *testing.T) {
	rng := NewDateRange(testutil.Date(2023, time.February, 1), testutil.Date(2023, time.January, 1))

	assert.Equal(t, testutil.Date(2023, time.January, 1), rng.Start)
	assert.Equal(t, testutil.Date(2023, time.February, 1), rng.End)
	assert.False(t, rng.Contains(time.Time{}))
}

func TestFilterStates(t *testing.T) {
	records := testutil.ThreeRowRecords()

	assert.Empty(t, FilterStates(records, nil))
	assert.Empty(t, FilterStates(records, []string{}))
	assert.Len(t, FilterStates(records, []string{"A"}), 2)
	assert.Len(t, FilterStates(records, []string{"A", "B"}), 3)
	assert.Empty(t, FilterStates(records, []string{"Z"}))
}

func TestFilters_ReturnNewSlices(t *testing.T) {
	records := testutil.ThreeRowRecords()

	out := FilterStates(records, []string{"A"})
	out[0].State = "changed"

	assert.Equal(t, "A", records[0].State)
}

func TestFilters_DistributeOverMerge(t *testing.T) {
	first := testutil.ThreeRowRecords()
	second := []domain.BiometricRecord{
		{State: "B", Date: testutil.Date(2023, time.March, 2), Age5To17: 1, Age17Plus: 1},
		{State: "C", Date: testutil.Date(2023, time.January, 9), Age5To17: 2, Age17Plus: 2},
	}
	merged := Merge(NormalizedSource{Records: first}, NormalizedSource{Records: second})

	sel := Selection{
		States: []string{"A", "B"},
		Range:  &DateRange{Start: testutil.Date(2023, time.January, 1), End: testutil.Date(2023, time.January, 31)},
	}

	want := append(sel.Apply(first), sel.Apply(second)...)
	assert.Equal(t, want, sel.Apply(merged.Records()))
}

func TestSelection_Apply(t *testing.T) {
	records := testutil.ThreeRowRecords()

	assert.Len(t, Selection{States: []string{"A"}}.Apply(records), 2)
	assert.Empty(t, Selection{}.Apply(records))

	rng := NewDateRange(testutil.Date(2023, time.January, 1), testutil.Date(2023, time.January, 31))
	assert.Len(t, Selection{States: []string{"A", "B"}, Range: &rng}.Apply(records), 2)
}
