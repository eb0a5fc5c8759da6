package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	"bioinsights/internal/config"
	"bioinsights/internal/dataprocessing"
	apierrors "bioinsights/internal/errors"
	"bioinsights/internal/exporter"
	"bioinsights/internal/infrastructure"
	"bioinsights/pkg/contracts/domain"
)

// SourceResolver turns the sources configuration into an ordered path list.
type SourceResolver interface {
	ResolveSources(cfg config.SourcesConfig) ([]string, error)
}

// DatasetLoader builds a Dataset from source paths.
type DatasetLoader interface {
	Load(ctx context.Context, paths []string) (*dataprocessing.Dataset, error)
}

// StatesView lists the selectable states and the default selection.
type StatesView struct {
	States  []string `json:"states"`
	Default []string `json:"default"`
}

// AggregateQuery is an ad-hoc grouping over a selection. Unlike a dashboard,
// an empty state list covers every state. Top <= 0 returns every group in
// first-seen order.
type AggregateQuery struct {
	Selection  dataprocessing.Selection
	Dimensions []dataprocessing.Dimension
	Metric     dataprocessing.Metric
	Top        int
}

func (q AggregateQuery) metric() dataprocessing.Metric {
	if q.Metric == "" {
		return dataprocessing.MetricTotal
	}
	return q.Metric
}

// AggregateRow is one group of an AggregateView.
type AggregateRow struct {
	Rank   int              `json:"rank,omitempty"`
	Key    []string         `json:"key"`
	Values map[string]int64 `json:"values"`
	Rows   int              `json:"rows"`
}

// AggregateView is the response form of an aggregate query.
type AggregateView struct {
	Dimensions []string       `json:"dimensions"`
	Metric     string         `json:"metric"`
	Groups     int            `json:"groups"`
	Rows       []AggregateRow `json:"rows"`
}

// DashboardService serves analytics over the current Dataset.
type DashboardService struct {
	sources       config.SourcesConfig
	opts          dataprocessing.DashboardOptions
	defaultStates int

	resolver SourceResolver
	loader   DatasetLoader
	dataset  atomic.Pointer[dataprocessing.Dataset]
	reloads  singleflight.Group

	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// DashboardOption configures optional collaborators of a DashboardService.
type DashboardOption func(*DashboardService)

// WithTracer sets the tracer used for service spans.
func WithTracer(tracer trace.Tracer) DashboardOption {
	return func(s *DashboardService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the pipeline metrics recorder.
func WithMetrics(metrics *infrastructure.PipelineMetrics) DashboardOption {
	return func(s *DashboardService) {
		s.metrics = metrics
	}
}

// NewDashboardService creates a DashboardService with no dataset loaded.
func NewDashboardService(cfg *config.Config, resolver SourceResolver, loader DatasetLoader, logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		sources: cfg.Sources,
		opts: dataprocessing.DashboardOptions{
			TopStates:    cfg.Dashboard.TopStates,
			PeakMonths:   cfg.Dashboard.PeakMonths,
			TopDistricts: cfg.Dashboard.TopDistricts,
		},
		defaultStates: cfg.Dashboard.DefaultStates,
		resolver:      resolver,
		loader:        loader,
		tracer:        noop.NewTracerProvider().Tracer("services"),
		logger:        logger.With(slog.String("component", "dashboard_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loaded reports whether a dataset is available.
func (s *DashboardService) Loaded() bool {
	return s.dataset.Load() != nil
}

// Reload rebuilds the Dataset from the configured sources and swaps it in.
// Concurrent calls share a single load. On failure the previous Dataset
// stays in place.
func (s *DashboardService) Reload(ctx context.Context) (domain.DatasetInfo, error) {
	v, err, shared := s.reloads.Do("reload", func() (interface{}, error) {
		return s.reload(ctx)
	})
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Reload shared with concurrent caller")
	}
	return v.(domain.DatasetInfo), nil
}

func (s *DashboardService) reload(ctx context.Context) (domain.DatasetInfo, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.reload")
	defer span.End()

	start := time.Now()
	paths, err := s.resolver.ResolveSources(s.sources)
	if err != nil {
		s.metrics.RecordDatasetLoad(ctx, time.Since(start), 0, nil, err)
		infrastructure.RecordError(ctx, err)
		return domain.DatasetInfo{}, apierrors.NewConfigError("failed to resolve sources", err)
	}
	span.SetAttributes(attribute.Int("sources", len(paths)))

	ds, err := s.loader.Load(ctx, paths)
	if err != nil {
		s.metrics.RecordDatasetLoad(ctx, time.Since(start), 0, nil, err)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Dataset reload failed",
			slog.Int("sources", len(paths)),
			slog.String("error", err.Error()))
		return domain.DatasetInfo{}, apierrors.NewLoadError("failed to load dataset", err).
			WithContext("sources", len(paths))
	}

	info := ds.Info()
	s.metrics.RecordDatasetLoad(ctx, time.Since(start), ds.Len(), degradedCounts(info.Sources), nil)
	span.SetAttributes(attribute.Int("records", ds.Len()))

	s.dataset.Store(ds)
	s.logger.InfoContext(ctx, "Dataset reloaded",
		slog.Int("records", info.Records),
		slog.Int("states", info.States),
		slog.Bool("has_district", info.HasDistrict))
	return info, nil
}

func degradedCounts(sources []domain.SourceSummary) map[string]int {
	counts := map[string]int{}
	for _, src := range sources {
		counts["unparsable_date"] += src.UnparsableDates
		counts["missing_date"] += src.MissingDates
		counts["defaulted_count"] += src.DefaultedCounts
		counts["malformed_row"] += src.MalformedRows
	}
	return counts
}

func (s *DashboardService) current() (*dataprocessing.Dataset, error) {
	ds := s.dataset.Load()
	if ds == nil {
		return nil, apierrors.NewUnavailableError("dataset has not been loaded", ErrDatasetNotLoaded)
	}
	return ds, nil
}

// Info describes the loaded dataset.
func (s *DashboardService) Info(ctx context.Context) (domain.DatasetInfo, error) {
	ds, err := s.current()
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	return ds.Info(), nil
}

// States returns the sorted distinct states and the default selection.
func (s *DashboardService) States(ctx context.Context) (StatesView, error) {
	ds, err := s.current()
	if err != nil {
		return StatesView{}, err
	}
	states := ds.States()
	return StatesView{
		States:  states,
		Default: dataprocessing.DefaultStates(states, s.defaultStates),
	}, nil
}

// Dashboard builds every dashboard view for sel. At least one state is
// required.
func (s *DashboardService) Dashboard(ctx context.Context, sel dataprocessing.Selection) (domain.Dashboard, error) {
	if len(sel.States) == 0 {
		return domain.Dashboard{}, apierrors.NewValidationError("no states selected", ErrEmptySelection)
	}
	ds, err := s.current()
	if err != nil {
		return domain.Dashboard{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Dashboard{}, err
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.build",
		trace.WithAttributes(attribute.StringSlice("states", sel.States)))
	defer span.End()

	start := time.Now()
	dash := dataprocessing.BuildDashboard(ds, sel, s.opts)
	s.metrics.RecordDashboardBuild(ctx, time.Since(start), len(sel.States))
	span.SetAttributes(attribute.Int("filtered_records", dash.FilteredCount))

	s.logger.DebugContext(ctx, "Dashboard built",
		slog.Any("states", sel.States),
		slog.Int("filtered_records", dash.FilteredCount),
		slog.Duration("duration", time.Since(start)))
	return dash, nil
}

// Monthly returns the monthly trend over the full dataset.
func (s *DashboardService) Monthly(ctx context.Context) (domain.MonthlyTrend, error) {
	ds, err := s.current()
	if err != nil {
		return domain.MonthlyTrend{}, err
	}
	return dataprocessing.BucketMonthly(ds.Records()).Contract(s.opts.PeakMonths), nil
}

// Districts returns the top districts over the full dataset.
func (s *DashboardService) Districts(ctx context.Context) ([]domain.RankedGroup, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	if !ds.HasDistrict() {
		return nil, ErrNoDistrictData
	}
	return dataprocessing.TopDistricts(ds.Records(), s.opts.TopDistricts), nil
}

// Aggregate groups the selected records by q.Dimensions.
func (s *DashboardService) Aggregate(ctx context.Context, q AggregateQuery) (AggregateView, error) {
	result, err := s.aggregate(ctx, q)
	if err != nil {
		return AggregateView{}, err
	}

	view := AggregateView{
		Dimensions: make([]string, 0, len(q.Dimensions)),
		Metric:     string(q.metric()),
		Groups:     result.Len(),
	}
	for _, d := range result.Dimensions() {
		view.Dimensions = append(view.Dimensions, string(d))
	}
	metrics := result.ReportedMetrics()

	if q.Top > 0 {
		ranked := dataprocessing.Top(result, q.metric(), q.Top)
		view.Rows = make([]AggregateRow, len(ranked))
		for i, r := range ranked {
			view.Rows[i] = aggregateRow(r.Entry, metrics)
			view.Rows[i].Rank = r.Rank
		}
		return view, nil
	}

	entries := result.Entries()
	view.Rows = make([]AggregateRow, len(entries))
	for i, e := range entries {
		view.Rows[i] = aggregateRow(e, metrics)
	}
	return view, nil
}

func aggregateRow(e dataprocessing.AggregateEntry, metrics []dataprocessing.Metric) AggregateRow {
	values := make(map[string]int64, len(metrics))
	for _, m := range metrics {
		values[string(m)] = e.Value(m)
	}
	key := e.Key
	if key == nil {
		key = []string{}
	}
	return AggregateRow{Key: key, Values: values, Rows: e.Rows}
}

// ExportAggregate writes the result of q to w in the given format. A ranked
// query exports the ranking, otherwise every group is exported.
func (s *DashboardService) ExportAggregate(ctx context.Context, q AggregateQuery, format exporter.Format, w io.Writer) error {
	result, err := s.aggregate(ctx, q)
	if err != nil {
		return err
	}

	_, span := s.tracer.Start(ctx, "aggregate.export",
		trace.WithAttributes(attribute.String("format", string(format))))
	defer span.End()

	frame := exporter.AggregateFrame(result)
	if q.Top > 0 {
		frame = exporter.RankedFrame(dataprocessing.Top(result, q.metric(), q.Top), q.metric())
	}

	switch format {
	case exporter.FormatCSV:
		err = exporter.WriteFrameCSV(w, frame, true)
	case exporter.FormatXLSX:
		err = exporter.WriteWorkbook(w, exporter.Sheet{Name: "aggregate", Frame: frame})
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		span.RecordError(err)
		return apierrors.NewStorageError("failed to export aggregate", err)
	}
	return nil
}

func (s *DashboardService) aggregate(ctx context.Context, q AggregateQuery) (dataprocessing.AggregateResult, error) {
	ds, err := s.current()
	if err != nil {
		return dataprocessing.AggregateResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return dataprocessing.AggregateResult{}, err
	}
	records := ds.Records()
	if len(q.Selection.States) > 0 {
		records = dataprocessing.FilterStates(records, q.Selection.States)
	}
	if rng := q.Selection.Range; rng != nil {
		records = dataprocessing.FilterDateRange(records, rng.Start, rng.End)
	}
	return dataprocessing.Aggregate(records, q.Dimensions), nil
}
