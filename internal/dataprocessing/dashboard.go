package dataprocessing

import (
	"math"
	"slices"

	"bioinsights/pkg/contracts/domain"
)

// DashboardOptions sets the size of each ranking.
type DashboardOptions struct {
	TopStates    int
	PeakMonths   int
	TopDistricts int
}

// DefaultDashboardOptions returns the standard ranking sizes.
func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{TopStates: 3, PeakMonths: 3, TopDistricts: 5}
}

var stateDims = []Dimension{DimensionState}

// BuildDashboard derives every dashboard view for one selection. When the
// selection has no date range, the span of dates in the state-filtered view
// is applied as the range, so undated rows drop out of the selected views.
func BuildDashboard(ds *Dataset, sel Selection, opts DashboardOptions) domain.Dashboard {
	all := ds.records
	if sel.Range == nil {
		if bounds, ok := DateBounds(FilterStates(all, sel.States)); ok {
			sel.Range = &bounds
		}
	}
	view := sel.Apply(all)

	dash := domain.Dashboard{
		Selection:     domain.DashboardSelection{States: slices.Clone(sel.States)},
		RecordCount:   len(all),
		FilteredCount: len(view),
	}
	if dash.Selection.States == nil {
		dash.Selection.States = []string{}
	}
	if sel.Range != nil {
		dash.Selection.From = sel.Range.Start.Format(domain.DateLayout)
		dash.Selection.To = sel.Range.End.Format(domain.DateLayout)
	}

	overall := Aggregate(view, nil)
	dash.Totals = domain.NewAttemptTotals(overall.Sum(MetricAge5To17), overall.Sum(MetricAge17Plus))
	dash.AgeDistribution = AgeDistribution(dash.Totals)

	selected := Aggregate(view, stateDims)
	dash.SelectedStates = StateSummaries(selected.Entries())
	if lead := Top(selected, MetricTotal, 1); len(lead) > 0 {
		dash.LeadingState = lead[0].Entry.Key[0]
	}

	byState := Aggregate(all, stateDims)
	dash.TopStates = RankedGroups(Top(byState, MetricTotal, opts.TopStates))
	dash.StateBreakdown = StateSummaries(rankedEntries(RankAll(byState, MetricAge17Plus)))

	dash.Monthly = BucketMonthly(all).Contract(opts.PeakMonths)
	dash.Daily = DailySeries(all)

	if ds.hasDistrict {
		dash.TopDistricts = TopDistricts(all, opts.TopDistricts)
	}
	return dash
}

// TopDistricts ranks districts by total attempts.
func TopDistricts(records []domain.BiometricRecord, n int) []domain.RankedGroup {
	return RankedGroups(Top(Aggregate(records, []Dimension{DimensionDistrict}), MetricTotal, n))
}

// AgeDistribution splits totals into per-age-group shares in percent.
func AgeDistribution(t domain.AttemptTotals) []domain.AgeShare {
	share := func(v int64) float64 {
		if t.Total == 0 {
			return 0
		}
		return math.Round(float64(v)/float64(t.Total)*10000) / 100
	}
	return []domain.AgeShare{
		{Group: string(MetricAge5To17), Label: "Age 5-17", Attempts: t.Age5To17, Percent: share(t.Age5To17)},
		{Group: string(MetricAge17Plus), Label: "Age 17+", Attempts: t.Age17Plus, Percent: share(t.Age17Plus)},
	}
}

// StateSummaries converts single-dimension state groups to summary rows.
func StateSummaries(entries []AggregateEntry) []domain.StateSummary {
	out := make([]domain.StateSummary, len(entries))
	for i, e := range entries {
		out[i] = domain.StateSummary{State: e.Key[0], AttemptTotals: e.Totals()}
	}
	return out
}

func rankedEntries(ranked []Ranked) []AggregateEntry {
	out := make([]AggregateEntry, len(ranked))
	for i, r := range ranked {
		out[i] = r.Entry
	}
	return out
}
