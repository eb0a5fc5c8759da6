package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioinsights/internal/shared/testutil"
)

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	first := testutil.WriteFile(t, dir, "part1.csv", testutil.ThreeRowCSV)
	second := testutil.WriteFile(t, dir, "part2.csv", testutil.CSV(testutil.BiometricCSVHeader,
		"not-a-date,C,4,6",
		"07-01-2023,A,oops,1",
	))

	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader(logger, LoaderConfig{})

	ds, err := loader.Load(context.Background(), []string{first, second})

	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, []string{"A", "B", "C"}, ds.States())

	records := ds.Records()
	assert.False(t, records[3].HasDate())
	assert.Equal(t, int64(10), records[3].TotalAttempts())
	assert.Equal(t, int64(0), records[4].Age5To17)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "degraded")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Dataset loaded")
	testutil.AssertLogAttr(t, handler, "component", "loader")
	testutil.AssertNoErrors(t, handler)
}

func TestLoader_UnreadableSourceAborts(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "good.csv", testutil.ThreeRowCSV)
	missing := filepath.Join(dir, "missing.csv")

	logger, handler := testutil.NewTestLogger(t)
	ds, err := NewLoader(logger, LoaderConfig{}).Load(context.Background(), []string{good, missing})

	assert.Nil(t, ds)
	require.ErrorIs(t, err, ErrSourceUnreadable)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, missing, loadErr.Source)
	testutil.AssertLogContains(t, handler, slog.LevelError, "Failed to read source")
}

func TestLoader_NoSources(t *testing.T) {
	_, err := NewLoader(nil, LoaderConfig{}).Load(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoSources)
}
