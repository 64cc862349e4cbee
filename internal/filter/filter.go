// Package filter applies request criteria to a batch of raw reviews.
package filter

import (
	"strings"
	"time"

	"review-insights-go/internal/reviewtime"
	"review-insights-go/internal/types"
)

// Reviews returns the order-preserving subsequence of reviews matching c.
// With no criteria the input slice is returned as is.
func Reviews(reviews []types.RawReview, c types.Criteria) []types.RawReview {
	if c.IsZero() {
		return reviews
	}
	m := newMatcher(c)
	out := make([]types.RawReview, 0, len(reviews))
	for _, r := range reviews {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

type matcher struct {
	listingID string
	channel   string
	dated     bool
	start     *time.Time
	end       *time.Time
}

func newMatcher(c types.Criteria) matcher {
	m := matcher{
		listingID: c.ListingID,
		channel:   c.Channel,
		dated:     c.HasDateBounds(),
	}
	if t, ok := reviewtime.Parse(c.StartDate); ok {
		m.start = &t
	}
	if t, ok := reviewtime.Parse(c.EndDate); ok {
		m.end = &t
	}
	return m
}

func (m matcher) match(r types.RawReview) bool {
	if m.listingID != "" && types.FormatID(r.ListingID) != m.listingID {
		return false
	}
	if m.channel != "" && (r.Channel == "" || !strings.EqualFold(r.Channel, m.channel)) {
		return false
	}
	if !m.dated {
		return true
	}
	// undated reviews cannot be range-checked
	submitted, ok := reviewtime.Parse(r.SubmittedAt)
	if !ok {
		return false
	}
	if m.start != nil && submitted.Before(*m.start) {
		return false
	}
	if m.end != nil && submitted.After(*m.end) {
		return false
	}
	return true
}
