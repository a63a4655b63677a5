package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	tenantIDKey  contextKey = "tenant_id"
	userIDKey    contextKey = "user_id"
)

// WithContext stores a logger in ctx for later retrieval with FromContext.
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored in ctx, or a nop logger when
// none was attached. Callers never need a nil check.
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// WithRequestID records the request id in ctx and returns a logger that
// tags every entry with it.
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return ctx, log.With(zap.String("request_id", requestID))
}

// WithTenantID records the tenant id in ctx and returns a logger that
// tags every entry with it.
func WithTenantID(ctx context.Context, log *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	return ctx, log.With(zap.String("tenant_id", tenantID))
}

// WithUserID records the user id in ctx and returns a logger that tags
// every entry with it.
func WithUserID(ctx context.Context, log *zap.Logger, userID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return ctx, log.With(zap.String("user_id", userID))
}

// GetRequestID returns the request id stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTenantID returns the tenant id stored in ctx, or "".
func GetTenantID(ctx context.Context) string {
	if id, ok := ctx.Value(tenantIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserID returns the user id stored in ctx, or "".
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTraceID returns the active OpenTelemetry trace id in ctx, or "".
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the active OpenTelemetry span id in ctx, or "".
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasSpanID() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

// WithTraceContext returns log tagged with the trace and span ids found
// in ctx. Entries without an active span come back unchanged.
func WithTraceContext(ctx context.Context, log *zap.Logger) *zap.Logger {
	traceID := GetTraceID(ctx)
	spanID := GetSpanID(ctx)
	if traceID == "" && spanID == "" {
		return log
	}
	fields := make([]zap.Field, 0, 2)
	if traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	if spanID != "" {
		fields = append(fields, zap.String("span_id", spanID))
	}
	return log.With(fields...)
}

// ContextLogger enriches every entry with the correlation fields found
// in the call's context. Services hold one and call L(ctx) per entry.
type ContextLogger struct {
	base *zap.Logger
}

// NewContextLogger wraps base in a ContextLogger.
func NewContextLogger(base *zap.Logger) *ContextLogger {
	return &ContextLogger{base: base}
}

// L returns the base logger enriched with trace, request, tenant, and
// user ids present in ctx.
func (c *ContextLogger) L(ctx context.Context) *zap.Logger {
	log := c.base
	log = WithTraceContext(ctx, log)
	if id := GetRequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}
	if id := GetTenantID(ctx); id != "" {
		log = log.With(zap.String("tenant_id", id))
	}
	if id := GetUserID(ctx); id != "" {
		log = log.With(zap.String("user_id", id))
	}
	return log
}

// Debug logs at debug level with context enrichment.
func (c *ContextLogger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Debug(msg, fields...)
}

// Info logs at info level with context enrichment.
func (c *ContextLogger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Info(msg, fields...)
}

// Warn logs at warn level with context enrichment.
func (c *ContextLogger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Warn(msg, fields...)
}

// Error logs at error level with context enrichment.
func (c *ContextLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	c.L(ctx).Error(msg, fields...)
}

// Zap exposes the unenriched base logger.
func (c *ContextLogger) Zap() *zap.Logger {
	return c.base
}
