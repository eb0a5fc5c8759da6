package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioinsights/internal/infrastructure"
	"bioinsights/internal/shared/testutil"
)

func newRequest(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	return r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-123"))
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	type query struct {
		States string `validate:"required"`
	}
	fieldErr := validator.New().Struct(query{})
	require.Error(t, fieldErr)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantLevel  slog.Level
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "wrapped context canceled",
			err:        fmt.Errorf("build dashboard: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "api validation error",
			err:        ErrValidation("states", "must not be empty"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "no district data",
			err:        fmt.Errorf("districts: %w", ErrNoDistrictData),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNoDistrictData,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "validator errors",
			err:        fieldErr,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "app unavailable error",
			err:        NewUnavailableError("dataset has not been loaded", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataNotLoaded,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "app load error",
			err:        NewLoadError("read source", fmt.Errorf("permission denied")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeSourceUnreadable,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "app validation error",
			err:        NewValidationError("no states selected", nil),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "app storage error",
			err:        NewStorageError("write export", fmt.Errorf("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "generic error",
			err:        fmt.Errorf("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			handler.HandleError(w, newRequest("/api/dashboard"), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/dashboard", body["instance"])
			assert.Equal(t, "trace-123", body["trace_id"])

			testutil.AssertLogContains(t, logHandler, tt.wantLevel, "request failed")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.HandleError(w, newRequest("/"), nil)

	assert.Equal(t, 0, logHandler.Count())
	assert.Empty(t, w.Body.String())
}

func TestErrorHandler_ValidatorFieldErrors(t *testing.T) {
	type query struct {
		Top int `validate:"min=1"`
	}
	err := validator.New().Struct(query{Top: 0})

	handler := NewErrorHandler(nil, false)
	problem := handler.ErrorToProblem(err, newRequest("/api/dashboard/aggregate"))

	fields, ok := problem.Extensions["errors"].([]ValidationError)
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "top", fields[0].Field)
	assert.Contains(t, fields[0].Message, "min")
}

func TestErrorHandler_InternalDetailHidden(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	problem := handler.ErrorToProblem(NewStorageError("disk path /secret/x", nil), newRequest("/"))

	assert.Equal(t, http.StatusInternalServerError, problem.Status)
	assert.NotContains(t, problem.Detail, "/secret/x")
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	handler := NewErrorHandler(nil, true)

	w := httptest.NewRecorder()
	handler.HandleError(w, newRequest("/"), fmt.Errorf("boom"))

	body := decodeProblem(t, w)
	assert.NotEmpty(t, body["stack"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandlePanic(w, newRequest("/api/states"), "nil map write")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, "nil map write", body["panic"])
	assert.Equal(t, "trace-123", body["trace_id"])
	testutil.AssertLogContains(t, logHandler, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(nil, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, newRequest("/missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	r := newRequest("/api/states")
	r.Method = http.MethodDelete
	handler.MethodNotAllowed(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decodeProblem(t, w)["detail"], "DELETE")
}
