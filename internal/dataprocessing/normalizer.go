package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"bioinsights/pkg/contracts/domain"
)

// Canonical column names.
const (
	ColumnState     = "state"
	ColumnDistrict  = "standard_district"
	ColumnDate      = "date"
	ColumnAge5To17  = "bio_age_5_17"
	ColumnAge17Plus = "bio_age_17_"
)

// RequiredColumns lists the columns every source is expected to provide.
var RequiredColumns = []string{ColumnState, ColumnDate, ColumnAge5To17, ColumnAge17Plus}

// RawTable is one source as read from disk: a header row plus data rows of
// raw string cells. Rows may be shorter or longer than Header.
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
	// MalformedRows counts rows the reader could not split into fields.
	// They are present in Rows as empty rows.
	MalformedRows int
}

// TableFromMaps builds a RawTable from rows keyed by raw column name. Columns
// are ordered by first appearance.
func TableFromMaps(source string, rows []map[string]string, columns ...string) RawTable {
	header := append([]string(nil), columns...)
	if len(header) == 0 {
		seen := make(map[string]bool)
		for _, row := range rows {
			for name := range row {
				if !seen[name] {
					seen[name] = true
					header = append(header, name)
				}
			}
		}
	}
	table := RawTable{Source: source, Header: header, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		cells := make([]string, len(header))
		for i, name := range header {
			cells[i] = row[name]
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// NormalizeStats counts the degradations applied while normalizing a source.
type NormalizeStats struct {
	Rows            int
	UnparsableDates int
	MissingDates    int
	DefaultedCounts int
	MalformedRows   int
	MissingColumns  []string
}

// Degraded reports whether any row was altered or any column was absent.
func (s NormalizeStats) Degraded() bool {
	return s.UnparsableDates > 0 || s.DefaultedCounts > 0 || s.MalformedRows > 0 || len(s.MissingColumns) > 0
}

// NormalizedSource is the canonical form of one input source.
type NormalizedSource struct {
	Name        string
	Records     []domain.BiometricRecord
	Stats       NormalizeStats
	HasDistrict bool
}

// NormalizeHeader trims surrounding whitespace and a leading byte-order mark
// and lower-cases the name.
func NormalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize maps a raw table onto the canonical schema. It never fails: the
// output has exactly one record per input row, in input order.
func Normalize(table RawTable) NormalizedSource {
	index := make(map[string]int, len(table.Header))
	for i, name := range table.Header {
		key := NormalizeHeader(name)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	stats := NormalizeStats{Rows: len(table.Rows), MalformedRows: table.MalformedRows}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			stats.MissingColumns = append(stats.MissingColumns, col)
		}
	}
	_, hasDistrict := index[ColumnDistrict]

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]domain.BiometricRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := domain.BiometricRecord{
			State:    strings.TrimSpace(cell(row, ColumnState)),
			District: strings.TrimSpace(cell(row, ColumnDistrict)),
		}

		rawDate := cell(row, ColumnDate)
		if date, ok := ParseDate(rawDate); ok {
			rec.Date = date
		} else if strings.TrimSpace(rawDate) == "" {
			stats.MissingDates++
		} else {
			stats.UnparsableDates++
		}

		var ok bool
		if rec.Age5To17, ok = ParseCount(cell(row, ColumnAge5To17)); !ok {
			stats.DefaultedCounts++
		}
		if rec.Age17Plus, ok = ParseCount(cell(row, ColumnAge17Plus)); !ok {
			stats.DefaultedCounts++
		}

		records = append(records, rec)
	}

	return NormalizedSource{
		Name:        table.Source,
		Records:     records,
		Stats:       stats,
		HasDistrict: hasDistrict,
	}
}

// ParseCount interprets a raw count cell. Thousands separators are ignored
// and integral floats such as "12.0" are accepted. Empty, unparsable or
// negative values yield 0 with ok=false.
func ParseCount(raw string) (int64, bool) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if value == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(math.Round(f)), true
}
