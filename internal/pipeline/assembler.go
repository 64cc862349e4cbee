package pipeline

import (
	"sort"
	"time"

	"review-insights-go/internal/aggregator"
	"review-insights-go/internal/filter"
	"review-insights-go/internal/normalize"
	"review-insights-go/internal/reviewtime"
	"review-insights-go/internal/types"
)

// Assemble filters, normalizes and aggregates reviews and packages the response.
// generatedAt is stamped as given; callers pass the current time.
func Assemble(src Source, criteria types.Criteria, generatedAt time.Time) types.NormalizedReviewResponse {
	filtered := filter.Reviews(src.Reviews, criteria)
	normalized := normalize.Reviews(filtered)

	channelSet := map[string]struct{}{}
	for _, r := range normalized {
		channelSet[r.Channel] = struct{}{}
	}
	channels := make([]string, 0, len(channelSet))
	for ch := range channelSet {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	listings := aggregator.Aggregate(normalized)

	resp := types.NormalizedReviewResponse{
		Listings: listings,
		Summary: types.Summary{
			TotalListings: len(listings),
			TotalReviews:  len(filtered),
			Channels:      channels,
			GeneratedAt:   reviewtime.Format(generatedAt),
			DataSource:    src.DataSource,
			Filters: types.Filters{
				StartDate: optional(criteria.StartDate),
				EndDate:   optional(criteria.EndDate),
			},
			Ingestion: src.Ingestion,
		},
	}
	if src.UpstreamError != "" {
		msg := src.UpstreamError
		resp.UpstreamError = &msg
	}
	return resp
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
