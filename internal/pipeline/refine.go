package pipeline

import (
	"sort"
	"strings"

	"review-insights-go/internal/aggregator"
	"review-insights-go/internal/reviewtime"
	"review-insights-go/internal/types"
)

// Sort orders for refined listings.
const (
	SortScoreDesc = "score_desc"
	SortScoreAsc  = "score_asc"
	SortRecent    = "recent"
)

// Refinement narrows an assembled response for display. The zero value keeps
// every listing and review in score_desc order, unrated listings last.
type Refinement struct {
	MinRating float64
	Category  string
	Search    string
	Sort      string
}

// Refine returns a copy of resp with listings and their reviews narrowed by r.
// The summary is left untouched: it describes the filtered dataset, not the view.
func Refine(resp types.NormalizedReviewResponse, r Refinement) types.NormalizedReviewResponse {
	term := strings.ToLower(strings.TrimSpace(r.Search))
	if len(term) < 2 {
		term = ""
	}
	category := r.Category
	if category == "all" {
		category = ""
	}

	listings := make([]types.NormalizedListing, 0, len(resp.Listings))
	for _, l := range resp.Listings {
		if r.MinRating > 0 && valueOr(l.AverageRating, 0) < r.MinRating {
			continue
		}
		if category != "" {
			if avg, ok := l.CategoryAverages[category]; ok && avg < r.MinRating {
				continue
			}
		}
		if term != "" && !anyReviewMatches(l.Reviews, term) {
			continue
		}

		reviews := make([]types.NormalizedReview, 0, len(l.Reviews))
		for _, rv := range l.Reviews {
			if category != "" && !hasCategory(rv, category) {
				continue
			}
			if r.MinRating > 0 && valueOr(rv.Rating, 0) < r.MinRating {
				continue
			}
			if term != "" && !reviewMatches(rv, term) {
				continue
			}
			reviews = append(reviews, rv)
		}
		l.Reviews = reviews
		listings = append(listings, l)
	}

	switch r.Sort {
	case SortRecent:
		sort.SliceStable(listings, func(i, j int) bool {
			return lastReviewUnix(listings[i]) > lastReviewUnix(listings[j])
		})
	case SortScoreAsc:
		// unrated listings stay last in either direction
		sort.SliceStable(listings, func(i, j int) bool {
			a, b := listings[i].AverageRating, listings[j].AverageRating
			if a == nil || b == nil {
				return b == nil && a != nil
			}
			return *a < *b
		})
	default:
		aggregator.SortByRating(listings)
	}

	resp.Listings = listings
	return resp
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func hasCategory(r types.NormalizedReview, key string) bool {
	for _, c := range r.Categories {
		if c.Key == key {
			return true
		}
	}
	return false
}

func reviewMatches(r types.NormalizedReview, term string) bool {
	var b strings.Builder
	b.WriteString(r.GuestName)
	if r.PublicReview != nil {
		b.WriteString(" " + *r.PublicReview)
	}
	if r.PrivateReview != nil {
		b.WriteString(" " + *r.PrivateReview)
	}
	return strings.Contains(strings.ToLower(b.String()), term)
}

func anyReviewMatches(reviews []types.NormalizedReview, term string) bool {
	for _, r := range reviews {
		if reviewMatches(r, term) {
			return true
		}
	}
	return false
}

func lastReviewUnix(l types.NormalizedListing) int64 {
	if l.LastReviewDate == nil {
		return 0
	}
	t, ok := reviewtime.Parse(*l.LastReviewDate)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// IsZero reports whether r would leave a response as assembled.
func (r Refinement) IsZero() bool {
	return r == Refinement{}
}
