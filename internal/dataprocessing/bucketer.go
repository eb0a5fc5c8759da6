package dataprocessing

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"bioinsights/pkg/contracts/domain"
)

// MonthlyTrend is the per-month aggregation of a record set together with the
// distribution of monthly totals.
type MonthlyTrend struct {
	Result AggregateResult
	Mean   float64
	Median float64
	StdDev float64
}

// BucketMonthly groups dated records by month. Records without a date are
// excluded. Mean, Median and StdDev are computed over the monthly totals and
// are zero when there are no dated records.
func BucketMonthly(records []domain.BiometricRecord) MonthlyTrend {
	trend := MonthlyTrend{Result: Aggregate(records, []Dimension{DimensionMonth})}
	if trend.Result.Len() == 0 {
		return trend
	}

	totals := make([]float64, 0, trend.Result.Len())
	for _, e := range trend.Result.entries {
		totals = append(totals, float64(e.Value(MetricTotal)))
	}
	trend.Mean = stat.Mean(totals, nil)
	if median, err := stats.Median(totals); err == nil {
		trend.Median = median
	}
	if sd, err := stats.StandardDeviationPopulation(totals); err == nil {
		trend.StdDev = sd
	}
	return trend
}

// Chronological returns the month groups in ascending month order.
func (t MonthlyTrend) Chronological() []AggregateEntry {
	entries := t.Result.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Key[0] < entries[j].Key[0]
	})
	return entries
}

// Peaks returns the n months with the highest total.
func (t MonthlyTrend) Peaks(n int) []Ranked {
	return Top(t.Result, MetricTotal, n)
}

// Contract converts the trend to its API form with n peak months.
func (t MonthlyTrend) Contract(peaks int) domain.MonthlyTrend {
	entries := t.Chronological()
	points := make([]domain.MonthlyPoint, len(entries))
	for i, e := range entries {
		points[i] = domain.MonthlyPoint{Month: e.Key[0], AttemptTotals: e.Totals()}
	}
	return domain.MonthlyTrend{
		Points: points,
		Mean:   t.Mean,
		Median: t.Median,
		StdDev: t.StdDev,
		Peaks:  RankedGroups(t.Peaks(peaks)),
	}
}

// DailySeries returns per-day totals in ascending date order.
func DailySeries(records []domain.BiometricRecord) []domain.DailyPoint {
	entries := Aggregate(records, []Dimension{DimensionDate}).Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Key[0] < entries[j].Key[0]
	})
	points := make([]domain.DailyPoint, len(entries))
	for i, e := range entries {
		points[i] = domain.DailyPoint{Date: e.Key[0], AttemptTotals: e.Totals()}
	}
	return points
}
