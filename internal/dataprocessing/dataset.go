package dataprocessing

import (
	"slices"
	"sort"
	"time"

	"bioinsights/pkg/contracts/domain"
)

// Dataset is the merged, immutable record collection shared by every view.
type Dataset struct {
	records     []domain.BiometricRecord
	sources     []domain.SourceSummary
	hasDistrict bool
	loadedAt    time.Time
}

// Merge concatenates normalized sources in the given order. Source order is
// preserved and duplicate rows are kept.
func Merge(sources ...NormalizedSource) *Dataset {
	total := 0
	for _, src := range sources {
		total += len(src.Records)
	}

	ds := &Dataset{
		records:  make([]domain.BiometricRecord, 0, total),
		sources:  make([]domain.SourceSummary, 0, len(sources)),
		loadedAt: time.Now().UTC(),
	}
	for _, src := range sources {
		ds.records = append(ds.records, src.Records...)
		ds.hasDistrict = ds.hasDistrict || src.HasDistrict
		ds.sources = append(ds.sources, domain.SourceSummary{
			Name:            src.Name,
			Rows:            len(src.Records),
			UnparsableDates: src.Stats.UnparsableDates,
			MissingDates:    src.Stats.MissingDates,
			DefaultedCounts: src.Stats.DefaultedCounts,
			MalformedRows:   src.Stats.MalformedRows,
			MissingColumns:  slices.Clone(src.Stats.MissingColumns),
			HasDistrict:     src.HasDistrict,
		})
	}
	return ds
}

// NewDataset wraps already-normalized records as a single-source dataset.
func NewDataset(records []domain.BiometricRecord) *Dataset {
	return Merge(NormalizedSource{Name: "memory", Records: slices.Clone(records)})
}

// Len returns the number of merged records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the merged records in merge order.
func (d *Dataset) Records() []domain.BiometricRecord {
	return slices.Clone(d.records)
}

// Sources describes the merged inputs in merge order.
func (d *Dataset) Sources() []domain.SourceSummary {
	return slices.Clone(d.sources)
}

// HasDistrict reports whether any source carried a district column.
func (d *Dataset) HasDistrict() bool {
	return d.hasDistrict
}

// LoadedAt is the time the dataset was merged.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// States returns the distinct non-empty state names, sorted.
func (d *Dataset) States() []string {
	return DistinctStates(d.records)
}

// Info summarizes the dataset for status endpoints.
func (d *Dataset) Info() domain.DatasetInfo {
	info := domain.DatasetInfo{
		Records:     d.Len(),
		States:      len(d.States()),
		HasDistrict: d.hasDistrict,
		Sources:     d.Sources(),
		LoadedAt:    d.loadedAt.Format(time.RFC3339),
	}
	if bounds, ok := DateBounds(d.records); ok {
		info.From = bounds.Start.Format(domain.DateLayout)
		info.To = bounds.End.Format(domain.DateLayout)
	}
	return info
}

// DistinctStates returns the distinct non-empty state names, sorted.
func DistinctStates(records []domain.BiometricRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.State != "" {
			seen[r.State] = struct{}{}
		}
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// DefaultStates returns the first n available states.
func DefaultStates(available []string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	if n > len(available) {
		n = len(available)
	}
	return slices.Clone(available[:n])
}

// DateBounds returns the earliest and latest non-null dates in records.
func DateBounds(records []domain.BiometricRecord) (DateRange, bool) {
	var bounds DateRange
	found := false
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		if !found || r.Date.Before(bounds.Start) {
			bounds.Start = r.Date
		}
		if !found || r.Date.After(bounds.End) {
			bounds.End = r.Date
		}
		found = true
	}
	return bounds, found
}
