package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext carries the correlation IDs of a single request. The trace
// middleware fills it from inbound headers, generating fresh IDs when a
// caller sent none.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

// WithTrace stores the trace info in ctx.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the trace info carried by ctx, or nil outside a request.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetTraceID returns the trace ID from ctx. Callers running outside a
// request (seeders, background work) get a fresh one so log lines still
// correlate.
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	return uuid.New().String()
}

// GetRequestID returns the request ID from ctx, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
