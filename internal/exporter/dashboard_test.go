package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bioinsights/internal/dataprocessing"
	"bioinsights/internal/shared/testutil"
	"bioinsights/pkg/contracts/domain"
)

func sampleDashboard() domain.Dashboard {
	ds := dataprocessing.NewDataset(testutil.ThreeRowRecords())
	return dataprocessing.BuildDashboard(ds, dataprocessing.Selection{States: []string{"A", "B"}}, dataprocessing.DefaultDashboardOptions())
}

func TestDashboardSheets(t *testing.T) {
	d := sampleDashboard()
	sheets := DashboardSheets(d)

	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
		require.NoError(t, s.Frame.Err, s.Name)
	}
	assert.Equal(t, []string{
		"summary", "selected_states", "top_states", "state_breakdown",
		"monthly_trend", "peak_months", "daily_series",
	}, names)

	d.TopDistricts = []domain.RankedGroup{{Rank: 1, Key: "X", AttemptTotals: domain.NewAttemptTotals(1, 1)}}
	assert.Len(t, DashboardSheets(d), 8)
}

func TestDashboardExporter_ExportCSV(t *testing.T) {
	dir := t.TempDir()
	logger, handler := testutil.NewTestLogger(t)
	ex := NewDashboardExporter(NewCSVWriter(dir), logger)

	files, err := ex.Export(sampleDashboard(), FormatCSV)
	require.NoError(t, err)
	assert.Len(t, files, 7)

	data, err := os.ReadFile(filepath.Join(dir, "monthly_trend.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"\xEF\xBB\xBFmonth,bio_age_5_17,bio_age_17_,total\n2023-01,13,7,20\n2023-02,7,1,8\n",
		string(data))

	assert.True(t, handler.ContainsMessage("Dashboard exported"))
}

func TestDashboardExporter_ExportXLSX(t *testing.T) {
	dir := t.TempDir()
	ex := NewDashboardExporter(NewCSVWriter(dir), nil)

	files, err := ex.Export(sampleDashboard(), FormatXLSX)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, DashboardWorkbookName)}, files)

	f, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("top_states")
	require.NoError(t, err)
	assert.Equal(t, []string{"rank", "key", "bio_age_5_17", "bio_age_17_", "total"}, rows[0])
	assert.Equal(t, []string{"1", "A", "17", "6", "23"}, rows[1])
}

func TestDashboardExporter_UnknownFormat(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	ex := NewDashboardExporter(NewCSVWriter(t.TempDir()), logger)

	_, err := ex.Export(sampleDashboard(), Format("pdf"))
	assert.Error(t, err)
	assert.True(t, handler.ContainsMessage("Dashboard export failed"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Contains(t, f.ContentType(), "spreadsheetml")
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")

	_, err = ParseFormat("json")
	assert.Error(t, err)
}
