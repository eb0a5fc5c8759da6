package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"bioinsights/pkg/contracts/domain"
)

// DatasetProbe exposes the currently served dataset. Info fails until the
// first load succeeds.
type DatasetProbe interface {
	Info(ctx context.Context) (domain.DatasetInfo, error)
}

// HealthService answers the health, readiness and liveness probes.
type HealthService struct {
	version   string
	buildTime string
	dataset   DatasetProbe
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the body of every probe response.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Runtime    map[string]interface{}     `json:"runtime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth describes one dependency. The dataset component also
// reports what was loaded.
type ComponentHealth struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Records  int            `json:"records,omitempty"`
	Sources  int            `json:"sources,omitempty"`
	Degraded map[string]int `json:"degraded,omitempty"`
	LoadedAt string         `json:"loaded_at,omitempty"`
}

// Probe states.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// NewHealthService creates a health service. A nil dataset probe never
// reports ready.
func NewHealthService(version, buildTime string, dataset DatasetProbe, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports ok while serving data and degraded while the process
// is up without a dataset.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	dataset := hs.datasetHealth(ctx)
	status := HealthStatus{
		Status:     StatusOK,
		Timestamp:  time.Now(),
		Version:    hs.version,
		Components: map[string]ComponentHealth{"dataset": dataset},
	}
	if dataset.Status != StatusReady {
		status.Status = StatusDegraded
	}

	hs.logger.DebugContext(ctx, "Health check completed",
		slog.String("status", status.Status),
		slog.Duration("uptime", time.Since(hs.startTime)))
	return status
}

// ReadinessCheck reports ready once a dataset has been loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Components: map[string]ComponentHealth{
			"dataset": hs.datasetHealth(ctx),
		},
	}
	for _, c := range status.Components {
		if c.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}
	return status
}

// LivenessCheck reports process runtime figures. It never consults the
// dataset.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns build and runtime identification.
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) datasetHealth(ctx context.Context) ComponentHealth {
	if hs.dataset == nil {
		return ComponentHealth{Status: StatusNotReady, Message: "no dataset configured"}
	}

	info, err := hs.dataset.Info(ctx)
	if err != nil {
		return ComponentHealth{Status: StatusNotReady, Message: "dataset not loaded"}
	}

	return ComponentHealth{
		Status:   StatusReady,
		Message:  "dataset loaded",
		Records:  info.Records,
		Sources:  len(info.Sources),
		Degraded: degradedCounts(info.Sources),
		LoadedAt: info.LoadedAt,
	}
}
