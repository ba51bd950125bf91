package profiler

import (
	"context"

	"go.opencensus.io/trace"
)

type ocTracer struct {
	config
}

// NewOpenCensus returns a tracer recording OpenCensus spans.
func NewOpenCensus(opts ...Option) Tracer {
	t := &ocTracer{}
	t.applyConfigs(opts...)
	return t
}

func (t *ocTracer) Start(ctx context.Context, s Span) (context.Context, func()) {
	if t.skip(s) {
		return ctx, func() {}
	}
	ctx, span := trace.StartSpan(ctx, t.label(s))
	span.AddAttributes(
		trace.StringAttribute("phase", s.Phase),
		trace.StringAttribute("file", s.Unit),
		trace.StringAttribute("package", s.Package),
	)
	return ctx, span.End
}
