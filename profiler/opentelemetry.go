package profiler

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

type tracerNameKey struct{}

// DefaultTracerName names the OpenTelemetry tracer unless the context
// overrides it.
const DefaultTracerName = "ceylon-spec"

// WithTracerName returns a context selecting the OpenTelemetry tracer name
// used for spans started beneath it.
func WithTracerName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, tracerNameKey{}, name)
}

func contextTracer(ctx context.Context) trace.Tracer {
	name, ok := ctx.Value(tracerNameKey{}).(string)
	if !ok {
		name = DefaultTracerName
	}
	return otel.GetTracerProvider().Tracer(name)
}

type otelTracer struct {
	config
}

// NewOpenTelemetry returns a tracer using the global OpenTelemetry provider.
func NewOpenTelemetry(opts ...Option) Tracer {
	t := &otelTracer{}
	t.applyConfigs(opts...)
	return t
}

func (t *otelTracer) Start(ctx context.Context, s Span) (context.Context, func()) {
	if t.skip(s) {
		return ctx, func() {}
	}
	ctx, span := contextTracer(ctx).Start(ctx, t.label(s))
	attrs := []attribute.KeyValue{
		attribute.String("analysis.phase", s.Phase),
	}
	if s.Unit != "" {
		attrs = append(attrs, semconv.CodeFilepath(s.Unit))
	}
	if s.Package != "" {
		attrs = append(attrs, semconv.CodeNamespace(s.Package))
	}
	span.SetAttributes(attrs...)
	return ctx, func() { span.End() }
}
