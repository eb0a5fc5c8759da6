package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioinsights/internal/dataprocessing"
	"bioinsights/internal/shared/testutil"
)

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		options WriteOptions
		want    string
	}{
		{
			name: "headers and records",
			path: "out.csv",
			options: WriteOptions{
				Headers: []string{"state", "total"},
				Records: [][]string{{"A", "23"}, {"B", "5"}},
			},
			want: "state,total\nA,23\nB,5\n",
		},
		{
			name: "with BOM in nested dir",
			path: filepath.Join("nested", "bom.csv"),
			options: WriteOptions{
				Headers:   []string{"state"},
				Records:   [][]string{{"Tamil Nadu"}},
				BOMPrefix: true,
			},
			want: "\xEF\xBB\xBFstate\nTamil Nadu\n",
		},
		{
			name: "quotes values with commas",
			path: "quoted.csv",
			options: WriteOptions{
				Records: [][]string{{"A / 2023-01", "1,000"}},
			},
			want: "A / 2023-01,\"1,000\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w := NewCSVWriter(dir)

			path, err := w.WriteCSV(tt.path, tt.options)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.path), path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	_, err := w.WriteCSV("log.csv", WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}, BOMPrefix: true})
	require.NoError(t, err)
	path, err := w.WriteCSV("log.csv", WriteOptions{Headers: []string{"a"}, Records: [][]string{{"2"}}, Append: true, BOMPrefix: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFa\n1\n2\n", string(data))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "abs.csv")

	path, err := NewCSVWriter("ignored").WriteCSV(abs, WriteOptions{Records: [][]string{{"x"}}})
	require.NoError(t, err)
	assert.Equal(t, abs, path)
}

func TestCSVWriter_WriteFrame(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	result := dataprocessing.Aggregate(testutil.ThreeRowRecords(), []dataprocessing.Dimension{dataprocessing.DimensionMonth})
	path, err := w.WriteFrame("monthly.csv", AggregateFrame(result))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"\xEF\xBB\xBFmonth,bio_age_5_17,bio_age_17_,total,rows\n2023-01,13,7,20,2\n2023-02,7,1,8,1\n",
		string(data))
}
