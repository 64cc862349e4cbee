// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"time"

	"review-insights-go/internal/metrics"
	"review-insights-go/internal/types"
)

// Pipeline runs one request end to end: resolve a source, then assemble. Nothing
// is cached; every call recomputes from the raw reviews.
type Pipeline struct {
	coordinator *Coordinator
	metrics     *metrics.Metrics
	now         func() time.Time
}

func New(c *Coordinator, m *metrics.Metrics, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{coordinator: c, metrics: m, now: now}
}

// Run always yields a response; upstream trouble only shows up as the fallback
// data source and an upstreamError diagnostic.
func (p *Pipeline) Run(ctx context.Context, criteria types.Criteria) types.NormalizedReviewResponse {
	start := time.Now()
	src := p.coordinator.Resolve(ctx, criteria)
	resp := Assemble(src, criteria, p.now())
	p.metrics.Response(string(resp.Summary.DataSource))
	p.metrics.ObservePipeline(time.Since(start))
	return resp
}
