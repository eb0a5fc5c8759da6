package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioinsights/internal/config"
	"bioinsights/internal/shared/testutil"
)

func testOTelConfig() *OTelConfig {
	cfg := DefaultOTelConfig()
	cfg.Registry = prom.NewRegistry()
	return cfg
}

func TestOTelInitialization(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	cfg := testOTelConfig()
	cfg.EnableTracing = true
	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "OpenTelemetry initialized")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitialization_Disabled(t *testing.T) {
	cfg := testOTelConfig()
	cfg.EnableMetrics = false
	cfg.EnableTracing = false

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.Nil(t, providers.PrometheusHTTP)

	_, err = CreatePipelineMetrics(providers.Meter)
	assert.NoError(t, err)
}

func TestOTelInitialization_UnknownExporter(t *testing.T) {
	cfg := testOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, nil)
	assert.Error(t, err)
}

func TestOTelConfigFromConfig(t *testing.T) {
	cfg := OTelConfigFromConfig(config.Default().Telemetry)

	assert.Equal(t, "bioinsights", cfg.ServiceName)
	assert.Equal(t, config.AppVersion, cfg.ServiceVersion)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.EnableTracing)
}

func TestTraceCorrelation(t *testing.T) {
	cfg := testOTelConfig()
	cfg.EnableTracing = true
	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	RecordError(ctx, errors.New("boom"))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestPipelineMetrics_Exported(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig(), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordDatasetLoad(ctx, 150*time.Millisecond, 42, map[string]int{"unparsable_date": 3, "defaulted_count": 0}, nil)
	metrics.RecordDatasetLoad(ctx, time.Millisecond, 0, nil, errors.New("unreadable"))
	metrics.RecordDashboardBuild(ctx, 5*time.Millisecond, 2)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "dataset_loads_total")
	assert.Contains(t, text, `status="failure"`)
	assert.Contains(t, text, "dataset_records")
	assert.Contains(t, text, `reason="unparsable_date"`)
	assert.NotContains(t, text, `reason="defaulted_count"`)
	assert.Contains(t, text, "dashboard_builds_total")
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var metrics *PipelineMetrics

	assert.NotPanics(t, func() {
		metrics.RecordDatasetLoad(context.Background(), time.Second, 1, nil, nil)
		metrics.RecordDashboardBuild(context.Background(), time.Second, 1)
	})
}
