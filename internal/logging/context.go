package logging

import (
	"context"

	"go.uber.org/zap"
)

type requestCtxKey struct{}

// ContextFields extracts correlation data carried on ctx into zap
// fields, so every log line inside a request's lifetime is tagged
// with its correlation id automatically.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 1)
	if id := CorrelationIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("correlation_id", id))
	}
	return fields
}

// WithCorrelationID attaches a correlation id to ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, id)
}

// CorrelationIDFromContext extracts a correlation id previously
// attached with WithCorrelationID, or "" if none is present.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return id
	}
	return ""
}

type loggerCtxKey struct{}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves the logger stored by WithLogger, or a no-op
// logger if none was attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
