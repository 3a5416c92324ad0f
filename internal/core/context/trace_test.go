package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceContextRoundTrip(t *testing.T) {
	trace := &TraceContext{TraceID: "trace-1", RequestID: "req-1"}
	ctx := WithTrace(context.Background(), trace)

	assert.Equal(t, trace, GetTrace(ctx))
	assert.Equal(t, "trace-1", GetTraceID(ctx))
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestTraceContextOutsideRequest(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, GetTrace(ctx))
	assert.Empty(t, GetRequestID(ctx))
	// Background callers still get a usable correlation ID.
	assert.NotEmpty(t, GetTraceID(ctx))
}
