package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bioinsights/pkg/contracts/domain"
)

// BiometricCSVHeader is the canonical header of a biometric export.
const BiometricCSVHeader = "date,state,bio_age_5_17,bio_age_17_"

// ThreeRowCSV is a small export with two states across two months.
const ThreeRowCSV = BiometricCSVHeader + "\n" +
	"05-01-2023,A,10,5\n" +
	"06-01-2023,B,3,2\n" +
	"01-02-2023,A,7,1\n"

// ThreeRowRecords is ThreeRowCSV in normalized form.
func ThreeRowRecords() []domain.BiometricRecord {
	return []domain.BiometricRecord{
		{State: "A", Date: Date(2023, time.January, 5), Age5To17: 10, Age17Plus: 5},
		{State: "B", Date: Date(2023, time.January, 6), Age5To17: 3, Age17Plus: 2},
		{State: "A", Date: Date(2023, time.February, 1), Age5To17: 7, Age17Plus: 1},
	}
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// CSV joins a header and rows into CSV text.
func CSV(header string, rows ...string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}
