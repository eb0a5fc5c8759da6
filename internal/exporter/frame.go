package exporter

import (
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bioinsights/internal/dataprocessing"
	"bioinsights/pkg/contracts/domain"
)

// Column names shared by every exported table.
const (
	ColumnRank      = "rank"
	ColumnKey       = "key"
	ColumnRows      = "rows"
	ColumnAge5To17  = string(dataprocessing.MetricAge5To17)
	ColumnAge17Plus = string(dataprocessing.MetricAge17Plus)
	ColumnTotal     = string(dataprocessing.MetricTotal)
)

// AggregateFrame lays out result with one String column per dimension, one
// Int column per reported metric and a trailing row count. Group order is
// preserved.
func AggregateFrame(result dataprocessing.AggregateResult) dataframe.DataFrame {
	dims := result.Dimensions()
	metrics := result.ReportedMetrics()
	entries := result.Entries()

	keys := make([][]string, len(dims))
	for i := range keys {
		keys[i] = make([]string, len(entries))
	}
	values := make([][]int, len(metrics))
	for i := range values {
		values[i] = make([]int, len(entries))
	}
	rows := make([]int, len(entries))

	for r, e := range entries {
		for i := range dims {
			keys[i][r] = e.Key[i]
		}
		for i, m := range metrics {
			values[i][r] = int(e.Value(m))
		}
		rows[r] = e.Rows
	}

	cols := make([]series.Series, 0, len(dims)+len(metrics)+1)
	for i, d := range dims {
		cols = append(cols, series.New(keys[i], series.String, string(d)))
	}
	for i, m := range metrics {
		cols = append(cols, series.New(values[i], series.Int, string(m)))
	}
	cols = append(cols, series.New(rows, series.Int, ColumnRows))

	return dataframe.New(cols...)
}

// RankedFrame lays out a ranking as rank, key and the ranked metric value.
func RankedFrame(ranked []dataprocessing.Ranked, metric dataprocessing.Metric) dataframe.DataFrame {
	ranks := make([]int, len(ranked))
	keys := make([]string, len(ranked))
	vals := make([]int, len(ranked))
	for i, r := range ranked {
		ranks[i] = r.Rank
		keys[i] = r.Entry.Label()
		vals[i] = int(r.Value)
	}
	return dataframe.New(
		series.New(ranks, series.Int, ColumnRank),
		series.New(keys, series.String, ColumnKey),
		series.New(vals, series.Int, string(metric)),
	)
}

// WriteFrameCSV writes df as CSV to w, optionally prefixed with a UTF-8 BOM.
func WriteFrameCSV(w io.Writer, df dataframe.DataFrame, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	return df.WriteCSV(w)
}

// totalsColumns builds the three age-total columns for n rows.
func totalsColumns(n int, at func(i int) domain.AttemptTotals) []series.Series {
	a, b, t := make([]int, n), make([]int, n), make([]int, n)
	for i := 0; i < n; i++ {
		totals := at(i)
		a[i], b[i], t[i] = int(totals.Age5To17), int(totals.Age17Plus), int(totals.Total)
	}
	return []series.Series{
		series.New(a, series.Int, ColumnAge5To17),
		series.New(b, series.Int, ColumnAge17Plus),
		series.New(t, series.Int, ColumnTotal),
	}
}

// RankedGroupsFrame lays out top-N rows.
func RankedGroupsFrame(groups []domain.RankedGroup) dataframe.DataFrame {
	ranks := make([]int, len(groups))
	keys := make([]string, len(groups))
	for i, g := range groups {
		ranks[i] = g.Rank
		keys[i] = g.Key
	}
	cols := []series.Series{
		series.New(ranks, series.Int, ColumnRank),
		series.New(keys, series.String, ColumnKey),
	}
	cols = append(cols, totalsColumns(len(groups), func(i int) domain.AttemptTotals { return groups[i].AttemptTotals })...)
	return dataframe.New(cols...)
}

// StateSummariesFrame lays out per-state totals.
func StateSummariesFrame(states []domain.StateSummary) dataframe.DataFrame {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.State
	}
	cols := []series.Series{series.New(names, series.String, string(dataprocessing.DimensionState))}
	cols = append(cols, totalsColumns(len(states), func(i int) domain.AttemptTotals { return states[i].AttemptTotals })...)
	return dataframe.New(cols...)
}

// MonthlyFrame lays out the monthly trend points.
func MonthlyFrame(points []domain.MonthlyPoint) dataframe.DataFrame {
	months := make([]string, len(points))
	for i, p := range points {
		months[i] = p.Month
	}
	cols := []series.Series{series.New(months, series.String, string(dataprocessing.DimensionMonth))}
	cols = append(cols, totalsColumns(len(points), func(i int) domain.AttemptTotals { return points[i].AttemptTotals })...)
	return dataframe.New(cols...)
}

// DailyFrame lays out the daily series.
func DailyFrame(points []domain.DailyPoint) dataframe.DataFrame {
	dates := make([]string, len(points))
	for i, p := range points {
		dates[i] = p.Date
	}
	cols := []series.Series{series.New(dates, series.String, string(dataprocessing.DimensionDate))}
	cols = append(cols, totalsColumns(len(points), func(i int) domain.AttemptTotals { return points[i].AttemptTotals })...)
	return dataframe.New(cols...)
}

// SummaryFrame lays out the dashboard's scalar figures as metric/value rows.
func SummaryFrame(d domain.Dashboard) dataframe.DataFrame {
	type kv struct{ k, v string }
	rows := []kv{
		{"from", d.Selection.From},
		{"to", d.Selection.To},
		{"record_count", formatInt(int64(d.RecordCount))},
		{"filtered_count", formatInt(int64(d.FilteredCount))},
		{ColumnAge5To17, formatInt(d.Totals.Age5To17)},
		{ColumnAge17Plus, formatInt(d.Totals.Age17Plus)},
		{ColumnTotal, formatInt(d.Totals.Total)},
		{"leading_state", d.LeadingState},
		{"monthly_mean", formatFloat(d.Monthly.Mean)},
		{"monthly_median", formatFloat(d.Monthly.Median)},
		{"monthly_std_dev", formatFloat(d.Monthly.StdDev)},
	}
	for _, share := range d.AgeDistribution {
		rows = append(rows, kv{"share_" + share.Group, formatFloat(share.Percent)})
	}

	keys := make([]string, len(rows))
	vals := make([]string, len(rows))
	for i, r := range rows {
		keys[i], vals[i] = r.k, r.v
	}
	return dataframe.New(
		series.New(keys, series.String, "metric"),
		series.New(vals, series.String, "value"),
	)
}
