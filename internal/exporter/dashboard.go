package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bioinsights/pkg/contracts/domain"
)

// DashboardWorkbookName is the file written for XLSX dashboard exports.
const DashboardWorkbookName = "dashboard.xlsx"

// DashboardExporter writes every table of a dashboard to the CSV writer's
// base directory.
type DashboardExporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewDashboardExporter creates a dashboard exporter
func NewDashboardExporter(csv *CSVWriter, logger *slog.Logger) *DashboardExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardExporter{
		csv:    csv,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// DashboardSheets returns the dashboard's tables in export order. The
// district table is omitted when the dashboard has none.
func DashboardSheets(d domain.Dashboard) []Sheet {
	sheets := []Sheet{
		{Name: "summary", Frame: SummaryFrame(d)},
		{Name: "selected_states", Frame: StateSummariesFrame(d.SelectedStates)},
		{Name: "top_states", Frame: RankedGroupsFrame(d.TopStates)},
		{Name: "state_breakdown", Frame: StateSummariesFrame(d.StateBreakdown)},
		{Name: "monthly_trend", Frame: MonthlyFrame(d.Monthly.Points)},
		{Name: "peak_months", Frame: RankedGroupsFrame(d.Monthly.Peaks)},
		{Name: "daily_series", Frame: DailyFrame(d.Daily)},
	}
	if len(d.TopDistricts) > 0 {
		sheets = append(sheets, Sheet{Name: "top_districts", Frame: RankedGroupsFrame(d.TopDistricts)})
	}
	return sheets
}

// Export writes the dashboard as one CSV per table or a single workbook and
// returns the written paths.
func (e *DashboardExporter) Export(d domain.Dashboard, format Format) ([]string, error) {
	sheets := DashboardSheets(d)

	var (
		files []string
		err   error
	)
	switch format {
	case FormatCSV:
		files, err = e.exportCSV(sheets)
	case FormatXLSX:
		files, err = e.exportXLSX(sheets)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		e.logger.Error("Dashboard export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, err
	}

	e.logger.Info("Dashboard exported",
		slog.String("format", string(format)),
		slog.String("dir", e.csv.BaseDir()),
		slog.Int("files", len(files)))
	return files, nil
}

func (e *DashboardExporter) exportCSV(sheets []Sheet) ([]string, error) {
	files := make([]string, 0, len(sheets))
	for _, s := range sheets {
		path, err := e.csv.WriteFrame(s.Name+".csv", s.Frame)
		if err != nil {
			return files, fmt.Errorf("failed to write %s: %w", s.Name, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func (e *DashboardExporter) exportXLSX(sheets []Sheet) ([]string, error) {
	path := e.csv.resolvePath(DashboardWorkbookName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create workbook: %w", err)
	}
	if err := WriteWorkbook(file, sheets...); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return []string{path}, nil
}
