package profiler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/profiler"
	"github.com/stretchr/testify/assert"
	"go.opencensus.io/trace"
)

type collectExporter struct {
	mu    sync.Mutex
	spans []*trace.SpanData
}

func (e *collectExporter) ExportSpan(sd *trace.SpanData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, sd)
}

func TestOpenCensus(t *testing.T) {
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	exporter := new(collectExporter)
	trace.RegisterExporter(exporter)
	t.Cleanup(func() { trace.UnregisterExporter(exporter) })

	tr := profiler.NewOpenCensus()
	ctx, end := tr.Start(context.Background(), profiler.Span{Phase: "run"})
	_, endCheck := tr.Start(ctx, profiler.Span{Phase: "check", Unit: "p/c.ceylon", Package: "p"})
	endCheck()
	end()

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	if assert.Len(t, exporter.spans, 2) {
		assert.Equal(t, "check:p/c.ceylon", exporter.spans[0].Name)
		assert.Equal(t, "p/c.ceylon", exporter.spans[0].Attributes["file"])
		assert.Equal(t, exporter.spans[1].SpanID, exporter.spans[0].ParentSpanID)
	}
}
