// Package profiler traces the phases of semantic analysis.  A Tracer opens
// one span per phase per unit; the OpenTelemetry and OpenCensus tracers
// export them through whatever provider the process has installed.
package profiler

import (
	"context"
	"fmt"
)

// Span identifies one traced piece of analysis work.
type Span struct {
	Phase   string
	Unit    string
	Package string
}

// Tracer opens spans.  The returned function ends the span.
type Tracer interface {
	Start(ctx context.Context, s Span) (context.Context, func())
}

// Kinds accepted by New.
const (
	KindNone          = "none"
	KindOpenTelemetry = "otel"
	KindOpenCensus    = "opencensus"
)

type config struct {
	skipFilter SkipFilter
	labeler    Labeler
}

type Option func(*config)

func (c *config) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

func (c *config) skip(s Span) bool {
	return c.skipFilter != nil && c.skipFilter(s)
}

func (c *config) label(s Span) string {
	if c.labeler != nil {
		if l := c.labeler(s); l != "" {
			return l
		}
	}
	return defaultLabel(s)
}

func defaultLabel(s Span) string {
	if s.Unit == "" {
		return s.Phase
	}
	return s.Phase + ":" + s.Unit
}

// New returns the tracer named by kind.  An empty kind is KindNone.
func New(kind string, opts ...Option) (Tracer, error) {
	switch kind {
	case "", KindNone:
		return Noop(), nil
	case KindOpenTelemetry:
		return NewOpenTelemetry(opts...), nil
	case KindOpenCensus:
		return NewOpenCensus(opts...), nil
	default:
		return nil, fmt.Errorf("unknown tracer: %q", kind)
	}
}

type noop struct{}

// Noop returns a tracer that records nothing.
func Noop() Tracer { return noop{} }

func (noop) Start(ctx context.Context, s Span) (context.Context, func()) {
	return ctx, func() {}
}
