package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioinsights/internal/config"
	"bioinsights/internal/infrastructure"
	customMiddleware "bioinsights/internal/middleware"
	"bioinsights/internal/shared/testutil"
)

// newTestApplication wires an application over a temp copy of the three-row
// fixture, with its own Prometheus registry.
func newTestApplication(t *testing.T, sources ...string) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()

	cfg := config.Default()
	cfg.Security.RateLimit.Enabled = false
	if len(sources) == 0 {
		sources = []string{testutil.WriteFile(t, t.TempDir(), "three.csv", testutil.ThreeRowCSV)}
	}
	cfg.Sources.Files = sources

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.Registry = prom.NewRegistry()

	logger, handler := testutil.NewTestLogger(t)
	app, err := NewApplicationWithConfig(cfg, logger, otelCfg)
	require.NoError(t, err)
	return app, handler
}

func get(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	t.Setenv("BIO_SERVER_PORT", "-1")

	app, err := NewApplication()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
	assert.Nil(t, app)
}

func TestNewApplicationWithConfig(t *testing.T) {
	app, handler := newTestApplication(t)

	assert.NotNil(t, app.Config)
	assert.NotNil(t, app.Logger)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.DashboardService)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.Metrics)
	assert.Equal(t, fmt.Sprintf(":%d", config.DefaultPort), app.Server.Addr)
	assert.False(t, app.DashboardService.Loaded())
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Application starting")
}

func TestApplication_RoutesBeforeLoad(t *testing.T) {
	app, _ := newTestApplication(t)

	tests := []struct {
		name           string
		target         string
		expectedStatus int
	}{
		{name: "health", target: "/api/health", expectedStatus: http.StatusOK},
		{name: "live", target: "/api/health/live", expectedStatus: http.StatusOK},
		{name: "not ready", target: "/api/health/ready", expectedStatus: http.StatusServiceUnavailable},
		{name: "states unavailable", target: "/api/dashboard/states", expectedStatus: http.StatusServiceUnavailable},
		{name: "unknown route", target: "/api/unknown", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, app.Router, http.MethodGet, tt.target)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestApplication_RoutesAfterLoad(t *testing.T) {
	app, _ := newTestApplication(t)
	require.NoError(t, app.LoadDataset(context.Background()))

	tests := []struct {
		name           string
		method         string
		target         string
		expectedStatus int
	}{
		{name: "ready", method: http.MethodGet, target: "/api/health/ready", expectedStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, target: "/api/version", expectedStatus: http.StatusOK},
		{name: "states", method: http.MethodGet, target: "/api/dashboard/states", expectedStatus: http.StatusOK},
		{name: "dashboard", method: http.MethodGet, target: "/api/dashboard?states=A,B", expectedStatus: http.StatusOK},
		{name: "dashboard without states", method: http.MethodGet, target: "/api/dashboard", expectedStatus: http.StatusBadRequest},
		{name: "monthly", method: http.MethodGet, target: "/api/dashboard/monthly", expectedStatus: http.StatusOK},
		{name: "no districts", method: http.MethodGet, target: "/api/dashboard/districts", expectedStatus: http.StatusNotFound},
		{name: "aggregate", method: http.MethodGet, target: "/api/dashboard/aggregate?dimensions=month&top=1", expectedStatus: http.StatusOK},
		{name: "export", method: http.MethodGet, target: "/api/dashboard/export?dimensions=state&format=csv", expectedStatus: http.StatusOK},
		{name: "info", method: http.MethodGet, target: "/api/dashboard/info", expectedStatus: http.StatusOK},
		{name: "reload", method: http.MethodPost, target: "/api/dashboard/reload", expectedStatus: http.StatusOK},
		{name: "reload wrong method", method: http.MethodDelete, target: "/api/dashboard/reload", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, app.Router, tt.method, tt.target)
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(customMiddleware.RequestIDHeader))
		})
	}
}

func TestApplication_DashboardPayload(t *testing.T) {
	app, _ := newTestApplication(t)
	require.NoError(t, app.LoadDataset(context.Background()))

	rec := get(t, app.Router, http.MethodGet, "/api/dashboard?states=A")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			RecordCount   int `json:"record_count"`
			FilteredCount int `json:"filtered_count"`
			Totals        struct {
				Total int64 `json:"total"`
			} `json:"totals"`
			LeadingState string `json:"leading_state"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 3, body.Data.RecordCount)
	assert.Equal(t, 2, body.Data.FilteredCount)
	assert.Equal(t, int64(23), body.Data.Totals.Total)
	assert.Equal(t, "A", body.Data.LeadingState)
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	require.NoError(t, app.LoadDataset(context.Background()))

	get(t, app.Router, http.MethodGet, "/api/dashboard/monthly")
	rec := get(t, app.Router, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `route="/api/dashboard/monthly"`)
	assert.Contains(t, body, "dataset_loads_total")
}

func TestApplication_LoadDatasetFailure(t *testing.T) {
	app, handler := newTestApplication(t, filepath.Join(t.TempDir(), "missing.csv"))

	err := app.LoadDataset(context.Background())

	require.Error(t, err)
	assert.False(t, app.DashboardService.Loaded())
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Initial dataset load failed; serving without data")
}

func TestApplication_StartAndStop(t *testing.T) {
	app, _ := newTestApplication(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx, cancel, ln))

	url := fmt.Sprintf("http://%s/api/health/ready", ln.Addr().String())
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	assert.NoError(t, app.Stop(stopCtx))

	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestApplication_getCORSConfig(t *testing.T) {
	app, _ := newTestApplication(t)
	app.Config.Security.AllowedOrigins = []string{"https://dash.example.org"}

	cors := app.getCORSConfig()

	assert.Equal(t, []string{"https://dash.example.org"}, cors.AllowedOrigins)
	assert.Contains(t, cors.AllowedMethods, http.MethodPost)
	assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")
	assert.Equal(t, 300, cors.MaxAge)
}

func TestApplication_CORSPreflight(t *testing.T) {
	app, _ := newTestApplication(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard/states", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
}
