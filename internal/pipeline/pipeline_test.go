package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-insights-go/internal/metrics"
	"review-insights-go/internal/pipeline"
	"review-insights-go/internal/types"
)

func TestRun_FallbackGuarantee(t *testing.T) {
	up := fetchFunc(func(context.Context, types.Criteria) (types.UpstreamBatch, error) {
		return types.UpstreamBatch{}, errors.New("hostaway API request failed: 503 Service Unavailable")
	})
	p := pipeline.New(pipeline.NewCoordinator(up, fallback(t), nil, nil), nil, func() time.Time { return generatedAt })

	resp := p.Run(context.Background(), types.Criteria{})

	assert.Equal(t, types.SourceFallback, resp.Summary.DataSource)
	require.NotNil(t, resp.UpstreamError)
	assert.NotEmpty(t, *resp.UpstreamError)
	assert.Equal(t, "2025-01-02T03:04:05.000Z", resp.Summary.GeneratedAt)
	assert.Equal(t, 9, resp.Summary.TotalReviews)
}

func TestRun_UpstreamSource(t *testing.T) {
	up := fetchFunc(func(context.Context, types.Criteria) (types.UpstreamBatch, error) {
		return types.UpstreamBatch{Reviews: upstreamReviews()}, nil
	})
	m := metrics.New()
	p := pipeline.New(pipeline.NewCoordinator(up, fallback(t), nil, m), m, nil)

	resp := p.Run(context.Background(), types.Criteria{})

	assert.Equal(t, types.SourceUpstream, resp.Summary.DataSource)
	assert.Nil(t, resp.UpstreamError)
	assert.Equal(t, []string{"900", "901"}, listingIDs(resp))
}

func TestRun_RecomputesEveryCall(t *testing.T) {
	calls := 0
	up := fetchFunc(func(context.Context, types.Criteria) (types.UpstreamBatch, error) {
		calls++
		return types.UpstreamBatch{}, nil
	})
	tick := generatedAt
	p := pipeline.New(pipeline.NewCoordinator(up, fallback(t), nil, nil), nil, func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})

	first := p.Run(context.Background(), types.Criteria{})
	second := p.Run(context.Background(), types.Criteria{})

	assert.Equal(t, 2, calls)
	assert.NotEqual(t, first.Summary.GeneratedAt, second.Summary.GeneratedAt)
}
