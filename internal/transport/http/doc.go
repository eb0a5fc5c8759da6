// Package http implements the HTTP handlers of the analytics service. Handlers
// stay thin: they read and validate query parameters, call the service layer
// and render either a success envelope or an RFC 7807 problem.
//
// # Endpoints
//
//	GET  /api/dashboard?states=A,B&from=YYYY-MM-DD&to=YYYY-MM-DD
//	GET  /api/dashboard/states
//	GET  /api/dashboard/monthly
//	GET  /api/dashboard/districts
//	GET  /api/dashboard/aggregate?dimensions=state,month&metric=total&top=N
//	GET  /api/dashboard/export?format=csv|xlsx&dimensions=...
//	GET  /api/dashboard/info
//	POST /api/dashboard/reload
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//
// # Responses
//
// Successful reads are wrapped as
//
//	{"status": "success", "data": ..., "count": N}
//
// where count is present for list-like payloads. Errors are RFC 7807
// problem objects with a type URI from internal/errors, an error_code for
// API errors and the request trace_id.
//
// # Validation
//
// Query parameters are copied into small structs and checked with the
// shared QueryValidator from internal/middleware. A dashboard needs at least
// one state; from and to must both be present or both absent.
package http
