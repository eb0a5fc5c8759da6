package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type traceIDKey struct{}

// WithTraceID stores a correlation ID on ctx. Log records emitted with ctx
// carry it as trace_id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// GetTraceID returns the correlation ID stored on ctx, or "".
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// EnsureTraceID returns ctx unchanged when it already has a correlation ID,
// otherwise a child context with a fresh UUID.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, uuid.NewString())
}

// logTraceID prefers the stored correlation ID and falls back to the active
// span's trace ID.
func logTraceID(ctx context.Context) string {
	if id := GetTraceID(ctx); id != "" {
		return id
	}
	if ctx == nil {
		return ""
	}
	return TraceIDFromContext(ctx)
}
