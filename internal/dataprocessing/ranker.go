package dataprocessing

import (
	"sort"

	"bioinsights/pkg/contracts/domain"
)

// Ranked is one entry of a top-N ranking.
type Ranked struct {
	Rank  int
	Entry AggregateEntry
	Value int64
}

// Top returns at most n groups ordered by metric, largest first. Ties keep
// first-seen order. n <= 0, or a metric the result does not report, yields
// an empty ranking.
func Top(result AggregateResult, metric Metric, n int) []Ranked {
	if n <= 0 || result.Len() == 0 || !result.Reports(metric) {
		return []Ranked{}
	}
	entries := result.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value(metric) > entries[j].Value(metric)
	})
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]Ranked, n)
	for i := 0; i < n; i++ {
		out[i] = Ranked{Rank: i + 1, Entry: entries[i], Value: entries[i].Value(metric)}
	}
	return out
}

// RankAll orders every group by metric.
func RankAll(result AggregateResult, metric Metric) []Ranked {
	return Top(result, metric, result.Len())
}

// RankedGroups converts a ranking to its API form.
func RankedGroups(ranked []Ranked) []domain.RankedGroup {
	out := make([]domain.RankedGroup, len(ranked))
	for i, r := range ranked {
		out[i] = domain.RankedGroup{Rank: r.Rank, Key: r.Entry.Label(), AttemptTotals: r.Entry.Totals()}
	}
	return out
}
