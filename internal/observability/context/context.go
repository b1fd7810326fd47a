package context

import (
	"context"
	"strings"

	"github.com/smallbiznis/benchstay/pkg/telemetry/correlation"
)

type requestIDKey struct{}
type actorKey struct{}

// WithRequestID stores the inbound request identifier.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request identifier, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithActor records who performed the current operation (the X-Actor header).
func WithActor(ctx context.Context, actor string) context.Context {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting user or "system" when none was set.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return "system"
	}
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return "system"
}

// CorrelationIDFromContext returns the correlation ID carried by the context.
func CorrelationIDFromContext(ctx context.Context) string {
	return correlation.ExtractCorrelationID(ctx)
}
