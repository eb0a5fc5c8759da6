package http

import (
	"context"
	"io"

	"bioinsights/internal/dataprocessing"
	"bioinsights/internal/exporter"
	"bioinsights/internal/services"
	"bioinsights/pkg/contracts/domain"
)

// DashboardServiceInterface defines the analytics operations served over HTTP
type DashboardServiceInterface interface {
	States(ctx context.Context) (services.StatesView, error)
	Dashboard(ctx context.Context, sel dataprocessing.Selection) (domain.Dashboard, error)
	Monthly(ctx context.Context) (domain.MonthlyTrend, error)
	Districts(ctx context.Context) ([]domain.RankedGroup, error)
	Aggregate(ctx context.Context, q services.AggregateQuery) (services.AggregateView, error)
	ExportAggregate(ctx context.Context, q services.AggregateQuery, format exporter.Format, w io.Writer) error
	Info(ctx context.Context) (domain.DatasetInfo, error)
	Reload(ctx context.Context) (domain.DatasetInfo, error)
}
