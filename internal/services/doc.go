// Package services holds the business logic between the HTTP handlers and
// the analytics pipeline.
//
// DashboardService owns the current Dataset. Reads run against an immutable
// snapshot, and Reload swaps in a freshly built one atomically, so requests
// already in flight finish against the data they started with. Concurrent
// reloads share one load.
//
// HealthService reports liveness, readiness and build information. The
// service is ready once a dataset has been loaded.
//
// Errors returned to handlers are either *errors.AppError values or wrap one
// of the sentinels in errors.go, so the transport layer can map them to
// problem details without inspecting messages.
package services
