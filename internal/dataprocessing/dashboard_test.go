package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioinsights/internal/shared/testutil"
	"bioinsights/pkg/contracts/domain"
)

func TestBuildDashboard(t *testing.T) {
	ds := NewDataset(testutil.ThreeRowRecords())

	dash := BuildDashboard(ds, Selection{States: []string{"A"}}, DefaultDashboardOptions())

	assert.Equal(t, 3, dash.RecordCount)
	assert.Equal(t, 2, dash.FilteredCount)
	assert.Equal(t, domain.NewAttemptTotals(17, 6), dash.Totals)
	assert.Equal(t, "A", dash.LeadingState)
	assert.Equal(t, "2023-01-05", dash.Selection.From)
	assert.Equal(t, "2023-02-01", dash.Selection.To)

	require.Len(t, dash.TopStates, 2)
	assert.Equal(t, "A", dash.TopStates[0].Key)

	require.Len(t, dash.StateBreakdown, 2)
	assert.Equal(t, "A", dash.StateBreakdown[0].State)

	require.Len(t, dash.Monthly.Points, 2)
	assert.InDelta(t, 14.0, dash.Monthly.Mean, 1e-9)
	assert.Len(t, dash.Daily, 3)
	assert.Nil(t, dash.TopDistricts)

	require.Len(t, dash.AgeDistribution, 2)
	assert.InDelta(t, 73.91, dash.AgeDistribution[0].Percent, 1e-9)
	assert.InDelta(t, 26.09, dash.AgeDistribution[1].Percent, 1e-9)
}

func TestBuildDashboard_EmptySelection(t *testing.T) {
	ds := NewDataset(testutil.ThreeRowRecords())

	dash := BuildDashboard(ds, Selection{}, DefaultDashboardOptions())

	assert.Equal(t, 0, dash.FilteredCount)
	assert.Equal(t, domain.AttemptTotals{}, dash.Totals)
	assert.Empty(t, dash.SelectedStates)
	assert.Empty(t, dash.LeadingState)
	assert.Equal(t, []string{}, dash.Selection.States)
	assert.Empty(t, dash.Selection.From)
	assert.Zero(t, dash.AgeDistribution[0].Percent)
	assert.Len(t, dash.TopStates, 2)
}

func TestBuildDashboard_DateRange(t *testing.T) {
	ds := NewDataset(testutil.ThreeRowRecords())
	rng := NewDateRange(testutil.Date(2023, time.February, 1), testutil.Date(2023, time.January, 6))

	dash := BuildDashboard(ds, Selection{States: []string{"A", "B"}, Range: &rng}, DefaultDashboardOptions())

	assert.Equal(t, 2, dash.FilteredCount)
	assert.Equal(t, "2023-01-06", dash.Selection.From)
	assert.Equal(t, "2023-02-01", dash.Selection.To)
	assert.Equal(t, int64(13), dash.Totals.Total)
	assert.Len(t, dash.Monthly.Points, 2)
}

func TestBuildDashboard_DefaultRangeDropsUndated(t *testing.T) {
	records := append(testutil.ThreeRowRecords(), domain.BiometricRecord{State: "A", Age5To17: 1000})
	ds := NewDataset(records)
	states := []string{"A", "B"}

	implicit := BuildDashboard(ds, Selection{States: states}, DefaultDashboardOptions())

	rng := NewDateRange(testutil.Date(2023, time.January, 5), testutil.Date(2023, time.February, 1))
	explicit := BuildDashboard(ds, Selection{States: states, Range: &rng}, DefaultDashboardOptions())

	assert.Equal(t, "2023-01-05", implicit.Selection.From)
	assert.Equal(t, "2023-02-01", implicit.Selection.To)
	assert.Equal(t, 4, implicit.RecordCount)
	assert.Equal(t, 3, implicit.FilteredCount)
	assert.Equal(t, int64(28), implicit.Totals.Total)
	assert.Equal(t, explicit.Totals, implicit.Totals)
	assert.Equal(t, explicit.SelectedStates, implicit.SelectedStates)
	assert.Equal(t, explicit.AgeDistribution, implicit.AgeDistribution)
}

func TestBuildDashboard_Districts(t *testing.T) {
	ds := Merge(NormalizedSource{
		HasDistrict: true,
		Records: []domain.BiometricRecord{
			{State: "A", District: "North", Age5To17: 1},
			{State: "A", District: "South", Age5To17: 9},
			{State: "B", District: "East", Age5To17: 4},
			{State: "B", Age5To17: 100},
		},
	})

	dash := BuildDashboard(ds, Selection{States: []string{"A"}}, DashboardOptions{TopStates: 1, PeakMonths: 1, TopDistricts: 2})

	require.Len(t, dash.TopDistricts, 2)
	assert.Equal(t, "South", dash.TopDistricts[0].Key)
	assert.Equal(t, "East", dash.TopDistricts[1].Key)
	assert.Len(t, dash.TopStates, 1)
	assert.Empty(t, dash.Monthly.Points)
}
