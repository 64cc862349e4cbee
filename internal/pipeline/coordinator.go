package pipeline

import (
	"context"
	"fmt"

	"review-insights-go/internal/filter"
	"review-insights-go/internal/logger"
	"review-insights-go/internal/metrics"
	"review-insights-go/internal/types"
)

// Diagnostics reported alongside fallback data.
const (
	DiagnosticNoData  = "Hostaway API returned no reviews"
	DiagnosticUnknown = "Unknown Hostaway error"
)

// Fetcher is the upstream capability: a non-empty batch, an empty batch, or an
// error.
type Fetcher interface {
	FetchReviews(ctx context.Context, criteria types.Criteria) (types.UpstreamBatch, error)
}

// Source is the outcome of one coordination: the reviews to aggregate and where
// they came from.
type Source struct {
	Reviews       []types.RawReview
	DataSource    types.DataSource
	UpstreamError string
	Ingestion     *types.IngestionStats
}

// Coordinator picks between upstream data and the fallback dataset. It keeps no
// state between calls and never fails.
type Coordinator struct {
	upstream Fetcher
	fallback []types.RawReview
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewCoordinator(upstream Fetcher, fallback []types.RawReview, log *logger.Logger, m *metrics.Metrics) *Coordinator {
	if log == nil {
		log = logger.Discard()
	}
	return &Coordinator{
		upstream: upstream,
		fallback: fallback,
		log:      log.Component("coordinator"),
		metrics:  m,
	}
}

// Resolve makes a single upstream attempt and falls back on an empty result or
// any failure.
func (c *Coordinator) Resolve(ctx context.Context, criteria types.Criteria) Source {
	batch, err := c.attempt(ctx, criteria)
	switch {
	case err != nil:
		c.metrics.UpstreamOutcome(metrics.OutcomeError)
		msg := err.Error()
		if msg == "" {
			msg = DiagnosticUnknown
		}
		c.log.WithError(err).Warn("upstream failed, serving fallback dataset")
		return c.useFallback(criteria, msg)
	case len(batch.Reviews) == 0:
		c.metrics.UpstreamOutcome(metrics.OutcomeEmpty)
		c.metrics.RecordsDropped(batch.Stats.Dropped)
		c.log.WithField("dropped", batch.Stats.Dropped).Warn("upstream returned no reviews, serving fallback dataset")
		return c.useFallback(criteria, DiagnosticNoData)
	}

	c.metrics.UpstreamOutcome(metrics.OutcomeSuccess)
	c.metrics.RecordsDropped(batch.Stats.Dropped)
	c.log.WithField("reviews", len(batch.Reviews)).WithField("dropped", batch.Stats.Dropped).Info("serving upstream reviews")
	stats := batch.Stats
	return Source{
		Reviews:    filter.Reviews(batch.Reviews, criteria),
		DataSource: types.SourceUpstream,
		Ingestion:  &stats,
	}
}

func (c *Coordinator) useFallback(criteria types.Criteria, diagnostic string) Source {
	return Source{
		Reviews:       filter.Reviews(c.fallback, criteria),
		DataSource:    types.SourceFallback,
		UpstreamError: diagnostic,
	}
}

// attempt converts a panicking fetcher into an ordinary error.
func (c *Coordinator) attempt(ctx context.Context, criteria types.Criteria) (batch types.UpstreamBatch, err error) {
	if c.upstream == nil {
		return types.UpstreamBatch{}, fmt.Errorf("hostaway upstream not available")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return c.upstream.FetchReviews(ctx, criteria)
}
