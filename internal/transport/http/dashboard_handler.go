package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bioinsights/internal/errors"
	"bioinsights/internal/middleware"
	"bioinsights/internal/services"
)

// DashboardHandler serves the read-only analytics API with RFC 7807 errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.QueryValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *middleware.QueryValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = middleware.NewQueryValidator(logger)
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDashboard)
	r.Get("/states", h.GetStates)
	r.Get("/monthly", h.GetMonthly)
	r.Get("/districts", h.GetDistricts)
	r.Get("/aggregate", h.GetAggregate)
	r.Get("/export", h.ExportAggregate)
	r.Get("/info", h.GetInfo)
	r.Post("/reload", h.Reload)

	return r
}

func (h *DashboardHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

func (h *DashboardHandler) respondList(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

// handleError maps service sentinels to API errors before rendering
func (h *DashboardHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoDistrictData) {
		err = apierrors.ErrNoDistrictData
	}
	h.errorHandler.HandleError(w, r, err)
}

// GetStates handles GET /api/dashboard/states
func (h *DashboardHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.service.States(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondList(w, r, states, len(states.States))
}

// GetDashboard handles GET /api/dashboard?states=A,B&from=&to=
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sq := readSelection(r)
	if err := h.validator.Struct(dashboardQuery{States: sq.States, From: sq.From, To: sq.To}); err != nil {
		h.handleError(w, r, err)
		return
	}

	dash, err := h.service.Dashboard(r.Context(), sq.selection())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, r, dash)
}

// GetMonthly handles GET /api/dashboard/monthly
func (h *DashboardHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.Monthly(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondList(w, r, trend, len(trend.Points))
}

// GetDistricts handles GET /api/dashboard/districts
func (h *DashboardHandler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.service.Districts(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondList(w, r, districts, len(districts))
}

// GetAggregate handles GET /api/dashboard/aggregate
func (h *DashboardHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	aq, err := readAggregate(r)
	if err == nil {
		err = h.validator.Struct(aq)
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view, err := h.service.Aggregate(r.Context(), aq.toService())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondList(w, r, view, len(view.Rows))
}

// ExportAggregate handles GET /api/dashboard/export and returns the
// aggregate as a file attachment
func (h *DashboardHandler) ExportAggregate(w http.ResponseWriter, r *http.Request) {
	aq, err := readAggregate(r)
	eq := exportQuery{aggregateQuery: aq, Format: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))}
	if err == nil {
		err = h.validator.Struct(eq)
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	format := eq.format()
	q := aq.toService()

	var buf bytes.Buffer
	if err := h.service.ExportAggregate(r.Context(), q, format, &buf); err != nil {
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeStorage {
			h.logger.ErrorContext(r.Context(), "Aggregate export failed",
				slog.String("format", string(format)),
				slog.String("error", err.Error()))
			err = apierrors.ErrExportFailed
		}
		h.handleError(w, r, err)
		return
	}

	name := "aggregate"
	for _, d := range q.Dimensions {
		name += "_" + string(d)
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "Export response write failed", slog.String("error", err.Error()))
	}
}

// GetInfo handles GET /api/dashboard/info
func (h *DashboardHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, r, info)
}

// Reload handles POST /api/dashboard/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "Dataset reload requested",
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	info, err := h.service.Reload(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, r, info)
}
