package domain

// AttemptTotals holds summed attempt counts for one slice of the data.
type AttemptTotals struct {
	Age5To17  int64 `json:"bio_age_5_17"`
	Age17Plus int64 `json:"bio_age_17_"`
	Total     int64 `json:"total"`
}

// NewAttemptTotals derives Total from the two age-group sums.
func NewAttemptTotals(age5To17, age17Plus int64) AttemptTotals {
	return AttemptTotals{Age5To17: age5To17, Age17Plus: age17Plus, Total: age5To17 + age17Plus}
}

// RankedGroup is one row of a top-N ranking.
type RankedGroup struct {
	Rank int    `json:"rank"`
	Key  string `json:"key"`
	AttemptTotals
}

// StateSummary is the per-state breakdown row.
type StateSummary struct {
	State string `json:"state"`
	AttemptTotals
}

// MonthlyPoint is one month bucket of the trend series.
type MonthlyPoint struct {
	Month string `json:"month"`
	AttemptTotals
}

// DailyPoint is one calendar day of the daily series.
type DailyPoint struct {
	Date string `json:"date"`
	AttemptTotals
}

// AgeShare is the share of attempts attributed to one age group.
type AgeShare struct {
	Group    string  `json:"group"`
	Label    string  `json:"label"`
	Attempts int64   `json:"attempts"`
	Percent  float64 `json:"percent"`
}

// MonthlyTrend is the chronological monthly series plus its summary statistics.
type MonthlyTrend struct {
	Points []MonthlyPoint `json:"points"`
	Mean   float64        `json:"mean"`
	Median float64        `json:"median"`
	StdDev float64        `json:"std_dev"`
	Peaks  []RankedGroup  `json:"peaks"`
}

// DashboardSelection echoes the resolved filter that produced a dashboard.
type DashboardSelection struct {
	States []string `json:"states"`
	From   string   `json:"from,omitempty"`
	To     string   `json:"to,omitempty"`
}

// Dashboard is the full set of derived views rendered for one selection.
// Totals, AgeDistribution, SelectedStates and LeadingState are computed over
// the filtered view; every other section covers the full merged dataset.
type Dashboard struct {
	Selection       DashboardSelection `json:"selection"`
	RecordCount     int                `json:"record_count"`
	FilteredCount   int                `json:"filtered_count"`
	Totals          AttemptTotals      `json:"totals"`
	AgeDistribution []AgeShare         `json:"age_distribution"`
	SelectedStates  []StateSummary     `json:"selected_states"`
	LeadingState    string             `json:"leading_state,omitempty"`
	TopStates       []RankedGroup      `json:"top_states"`
	StateBreakdown  []StateSummary     `json:"state_breakdown"`
	Monthly         MonthlyTrend       `json:"monthly"`
	Daily           []DailyPoint       `json:"daily"`
	TopDistricts    []RankedGroup      `json:"top_districts,omitempty"`
}

// SourceSummary describes one loaded input source.
type SourceSummary struct {
	Name            string   `json:"name"`
	Rows            int      `json:"rows"`
	UnparsableDates int      `json:"unparsable_dates"`
	MissingDates    int      `json:"missing_dates"`
	DefaultedCounts int      `json:"defaulted_counts"`
	MalformedRows   int      `json:"malformed_rows"`
	MissingColumns  []string `json:"missing_columns,omitempty"`
	HasDistrict     bool     `json:"has_district"`
}

// DatasetInfo describes the currently loaded merged dataset.
type DatasetInfo struct {
	Records     int             `json:"records"`
	States      int             `json:"states"`
	HasDistrict bool            `json:"has_district"`
	From        string          `json:"from,omitempty"`
	To          string          `json:"to,omitempty"`
	Sources     []SourceSummary `json:"sources"`
	LoadedAt    string          `json:"loaded_at"`
}
