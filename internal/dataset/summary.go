package dataset

import (
	"sort"

	"review-insights-go/internal/types"
)

// Summary is a compact description of a review set, logged at startup.
type Summary struct {
	TotalReviews int            `json:"total_reviews"`
	RatedReviews int            `json:"rated_reviews"`
	Listings     int            `json:"listings"`
	ByChannel    map[string]int `json:"by_channel"`
	Channels     []string       `json:"channels"`
	Earliest     string         `json:"earliest,omitempty"`
	Latest       string         `json:"latest,omitempty"`
}

// Summarize counts reviews, listings and channels. Earliest and Latest compare
// submittedAt as text, which is chronological for ISO-8601 input.
func Summarize(reviews []types.RawReview) Summary {
	s := Summary{ByChannel: map[string]int{}, Channels: []string{}}
	listings := map[string]struct{}{}
	for _, r := range reviews {
		s.TotalReviews++
		if r.Rating != nil {
			s.RatedReviews++
		}
		listings[types.FormatID(r.ListingID)] = struct{}{}
		ch := r.Channel
		if ch == "" {
			ch = "unknown"
		}
		s.ByChannel[ch]++
		if r.SubmittedAt != "" {
			if s.Earliest == "" || r.SubmittedAt < s.Earliest {
				s.Earliest = r.SubmittedAt
			}
			if r.SubmittedAt > s.Latest {
				s.Latest = r.SubmittedAt
			}
		}
	}
	s.Listings = len(listings)
	for ch := range s.ByChannel {
		s.Channels = append(s.Channels, ch)
	}
	sort.Strings(s.Channels)
	return s
}
