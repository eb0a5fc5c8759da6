package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioinsights/internal/services"
	"bioinsights/internal/shared/testutil"
	"bioinsights/pkg/contracts/domain"
)

// probe stands in for the dashboard service's dataset description.
type probe bool

func (p probe) Info(context.Context) (domain.DatasetInfo, error) {
	if !p {
		return domain.DatasetInfo{}, services.ErrDatasetNotLoaded
	}
	return domain.DatasetInfo{Records: 3, Sources: []domain.SourceSummary{{Name: "three.csv", Rows: 3}}}, nil
}

func newHealthRouter(t *testing.T, loaded bool) http.Handler {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	handler := NewHealthHandler(services.NewHealthService("v1.0.0-test", "", probe(loaded), logger), logger)

	r := chi.NewRouter()
	r.Mount("/api/health", handler.Routes())
	r.Get("/api/version", handler.Version)
	return r
}

func TestHealthHandler_Endpoints(t *testing.T) {
	tests := []struct {
		name           string
		loaded         bool
		endpoint       string
		expectedStatus int
		expectedState  string
	}{
		{name: "health", loaded: true, endpoint: "/api/health", expectedStatus: http.StatusOK, expectedState: "ok"},
		{name: "health without data", loaded: false, endpoint: "/api/health", expectedStatus: http.StatusOK, expectedState: "degraded"},
		{name: "ready", loaded: true, endpoint: "/api/health/ready", expectedStatus: http.StatusOK, expectedState: "ready"},
		{name: "not ready", loaded: false, endpoint: "/api/health/ready", expectedStatus: http.StatusServiceUnavailable, expectedState: "not_ready"},
		{name: "live", loaded: false, endpoint: "/api/health/live", expectedStatus: http.StatusOK, expectedState: "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newHealthRouter(t, tt.loaded), http.MethodGet, tt.endpoint)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
			assert.Equal(t, "v1.0.0-test", status.Version)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	rec := serve(t, newHealthRouter(t, true), http.MethodGet, "/api/version")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "v1.0.0-test", body["version"])
	assert.Contains(t, body, "go_version")
}
