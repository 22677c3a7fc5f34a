package logger

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. "debug" switches to the development console encoder,
// any other level keeps the production JSON encoder.
func New(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Traced returns the trace_id field of the span carried by ctx.
func Traced(ctx context.Context) zap.Field {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if spanContext.HasTraceID() {
		return zap.String("trace_id", spanContext.TraceID().String())
	}
	return zap.Skip()
}

// For returns l annotated with the trace id of ctx.
func For(ctx context.Context, l *zap.Logger) *zap.Logger {
	return l.With(Traced(ctx))
}
