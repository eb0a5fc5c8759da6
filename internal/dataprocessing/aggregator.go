package dataprocessing

import (
	"fmt"
	"slices"
	"strings"

	"bioinsights/pkg/contracts/domain"
)

// Dimension is a grouping key extracted from a record.
type Dimension string

const (
	DimensionState    Dimension = "state"
	DimensionDistrict Dimension = "district"
	DimensionDate     Dimension = "date"
	DimensionMonth    Dimension = "month"
)

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(strings.ToLower(strings.TrimSpace(s))); d {
	case DimensionState, DimensionDistrict, DimensionDate, DimensionMonth:
		return d, nil
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// value returns the record's key for d. Records with an empty key are
// excluded from any grouping on d.
func (d Dimension) value(r domain.BiometricRecord) (string, bool) {
	switch d {
	case DimensionState:
		return r.State, r.State != ""
	case DimensionDistrict:
		return r.District, r.District != ""
	case DimensionDate:
		if !r.HasDate() {
			return "", false
		}
		return r.Date.Format(domain.DateLayout), true
	case DimensionMonth:
		m, ok := r.Month()
		if !ok {
			return "", false
		}
		return m.String(), true
	}
	return "", false
}

// Metric is a summable record field.
type Metric string

const (
	MetricAge5To17  Metric = "bio_age_5_17"
	MetricAge17Plus Metric = "bio_age_17_"
	MetricTotal     Metric = "total"
)

// AgeMetrics are the two base count metrics.
var AgeMetrics = []Metric{MetricAge5To17, MetricAge17Plus}

func (m Metric) value(r domain.BiometricRecord) int64 {
	switch m {
	case MetricAge5To17:
		return r.Age5To17
	case MetricAge17Plus:
		return r.Age17Plus
	case MetricTotal:
		return r.TotalAttempts()
	}
	return 0
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricAge5To17, MetricAge17Plus, MetricTotal:
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// ParseDimensions parses a comma-separated dimension list. Blank input
// yields no dimensions.
func ParseDimensions(list string) ([]Dimension, error) {
	var dims []Dimension
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := ParseDimension(part)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// AggregateEntry is one group of an AggregateResult.
type AggregateEntry struct {
	Key  []string
	Sums map[Metric]int64
	Rows int
}

// Label joins the key parts for display.
func (e AggregateEntry) Label() string {
	return strings.Join(e.Key, " / ")
}

// Value returns the summed metric. MetricTotal falls back to the sum of the
// base metrics when it was not computed directly. A metric that was not
// summed reads as 0; see AggregateResult.Reports.
func (e AggregateEntry) Value(m Metric) int64 {
	if v, ok := e.Sums[m]; ok {
		return v
	}
	if m == MetricTotal {
		var total int64
		for k, v := range e.Sums {
			if k != MetricTotal {
				total += v
			}
		}
		return total
	}
	return 0
}

// Totals converts the entry to age-group totals.
func (e AggregateEntry) Totals() domain.AttemptTotals {
	return domain.NewAttemptTotals(e.Value(MetricAge5To17), e.Value(MetricAge17Plus))
}

func (e AggregateEntry) clone() AggregateEntry {
	sums := make(map[Metric]int64, len(e.Sums))
	for k, v := range e.Sums {
		sums[k] = v
	}
	return AggregateEntry{Key: slices.Clone(e.Key), Sums: sums, Rows: e.Rows}
}

// AggregateResult holds groups in first-seen order.
type AggregateResult struct {
	dimensions []Dimension
	metrics    []Metric
	entries    []AggregateEntry
	index      map[string]int
}

const keySeparator = "\x1f"

// Aggregate groups records by the given dimensions and sums metrics within
// each group. With no metrics the age-group metrics are summed, and when more
// than one metric is summed a derived MetricTotal is added. With no
// dimensions the result has one ungrouped entry, or none for empty input.
func Aggregate(records []domain.BiometricRecord, dimensions []Dimension, metrics ...Metric) AggregateResult {
	if len(metrics) == 0 {
		metrics = AgeMetrics
	}
	metrics = dedupeMetrics(metrics)

	res := AggregateResult{
		dimensions: slices.Clone(dimensions),
		metrics:    metrics,
		index:      make(map[string]int),
	}

	key := make([]string, len(dimensions))
	for _, r := range records {
		if !res.keyFor(r, key) {
			continue
		}
		joined := strings.Join(key, keySeparator)
		i, ok := res.index[joined]
		if !ok {
			i = len(res.entries)
			res.index[joined] = i
			res.entries = append(res.entries, AggregateEntry{
				Key:  slices.Clone(key),
				Sums: make(map[Metric]int64, len(metrics)+1),
			})
		}
		entry := &res.entries[i]
		entry.Rows++
		for _, m := range metrics {
			entry.Sums[m] += m.value(r)
		}
	}

	if res.derivesTotal() {
		for i := range res.entries {
			var total int64
			for _, m := range metrics {
				total += res.entries[i].Sums[m]
			}
			res.entries[i].Sums[MetricTotal] = total
		}
	}
	return res
}

func dedupeMetrics(metrics []Metric) []Metric {
	out := make([]Metric, 0, len(metrics))
	for _, m := range metrics {
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func (r AggregateResult) keyFor(rec domain.BiometricRecord, key []string) bool {
	for i, d := range r.dimensions {
		v, ok := d.value(rec)
		if !ok {
			return false
		}
		key[i] = v
	}
	return true
}

func (r AggregateResult) derivesTotal() bool {
	return len(r.metrics) > 1 && !slices.Contains(r.metrics, MetricTotal)
}

// Dimensions returns the grouping dimensions.
func (r AggregateResult) Dimensions() []Dimension {
	return slices.Clone(r.dimensions)
}

// Metrics returns the summed metrics, excluding a derived total.
func (r AggregateResult) Metrics() []Metric {
	return slices.Clone(r.metrics)
}

// ReportedMetrics returns Metrics followed by the derived total, if any.
func (r AggregateResult) ReportedMetrics() []Metric {
	out := r.Metrics()
	if r.derivesTotal() {
		out = append(out, MetricTotal)
	}
	return out
}

// Reports reports whether m can be read from every entry: a summed metric,
// or the total, which Value derives from the sums.
func (r AggregateResult) Reports(m Metric) bool {
	return m == MetricTotal || slices.Contains(r.metrics, m)
}

// Len returns the number of groups.
func (r AggregateResult) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the groups in first-seen order.
func (r AggregateResult) Entries() []AggregateEntry {
	out := make([]AggregateEntry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.clone()
	}
	return out
}

// Lookup finds the group with the given key.
func (r AggregateResult) Lookup(key ...string) (AggregateEntry, bool) {
	i, ok := r.index[strings.Join(key, keySeparator)]
	if !ok {
		return AggregateEntry{}, false
	}
	return r.entries[i].clone(), true
}

// Sum returns the metric summed across all groups.
func (r AggregateResult) Sum(m Metric) int64 {
	var total int64
	for _, e := range r.entries {
		total += e.Value(m)
	}
	return total
}

// Merge combines two results of the same shape. Groups present in both are
// summed; order is r's groups followed by new groups from other.
func (r AggregateResult) Merge(other AggregateResult) (AggregateResult, error) {
	if !slices.Equal(r.dimensions, other.dimensions) || !slices.Equal(r.metrics, other.metrics) {
		return AggregateResult{}, ErrIncompatibleResults
	}
	out := AggregateResult{
		dimensions: slices.Clone(r.dimensions),
		metrics:    slices.Clone(r.metrics),
		entries:    r.Entries(),
		index:      make(map[string]int, len(r.index)+len(other.index)),
	}
	for k, i := range r.index {
		out.index[k] = i
	}
	for _, e := range other.entries {
		joined := strings.Join(e.Key, keySeparator)
		i, ok := out.index[joined]
		if !ok {
			out.index[joined] = len(out.entries)
			out.entries = append(out.entries, e.clone())
			continue
		}
		out.entries[i].Rows += e.Rows
		for m, v := range e.Sums {
			out.entries[i].Sums[m] += v
		}
	}
	return out, nil
}
