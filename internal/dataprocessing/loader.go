package dataprocessing

import (
	"context"
	"log/slog"
	"time"
)

// LoaderConfig holds the read options applied to every source.
type LoaderConfig struct {
	Sheet    string
	Encoding string
	Comma    rune
}

// Loader reads, normalizes and merges source files.
type Loader struct {
	logger *slog.Logger
	opts   ReadOptions
}

// NewLoader creates a Loader. A nil logger falls back to slog.Default().
func NewLoader(logger *slog.Logger, cfg LoaderConfig) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "loader")),
		opts:   ReadOptions{Sheet: cfg.Sheet, Encoding: cfg.Encoding, Comma: cfg.Comma},
	}
}

// Load reads every path in order and merges the results. The first
// unreadable source aborts the load with a *LoadError.
func (l *Loader) Load(ctx context.Context, paths []string) (*Dataset, error) {
	if len(paths) == 0 {
		return nil, ErrNoSources
	}

	start := time.Now()
	sources := make([]NormalizedSource, 0, len(paths))
	for _, path := range paths {
		table, err := ReadSource(path, l.opts)
		if err != nil {
			l.logger.ErrorContext(ctx, "Failed to read source",
				slog.String("source", path),
				slog.String("error", err.Error()))
			return nil, err
		}

		src := Normalize(table)
		l.logSource(ctx, src)
		sources = append(sources, src)
	}

	ds := Merge(sources...)
	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.Int("sources", len(sources)),
		slog.Int("records", ds.Len()),
		slog.Bool("has_district", ds.HasDistrict()),
		slog.Duration("duration", time.Since(start)))
	return ds, nil
}

func (l *Loader) logSource(ctx context.Context, src NormalizedSource) {
	attrs := []any{
		slog.String("source", src.Name),
		slog.Int("rows", src.Stats.Rows),
		slog.Bool("has_district", src.HasDistrict),
	}
	if !src.Stats.Degraded() {
		l.logger.DebugContext(ctx, "Source normalized", attrs...)
		return
	}
	attrs = append(attrs,
		slog.Int("unparsable_dates", src.Stats.UnparsableDates),
		slog.Int("defaulted_counts", src.Stats.DefaultedCounts),
		slog.Int("malformed_rows", src.Stats.MalformedRows),
		slog.Any("missing_columns", src.Stats.MissingColumns))
	l.logger.WarnContext(ctx, "Source normalized with degraded values", attrs...)
}
