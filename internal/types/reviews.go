// internal/types/reviews.go
package types

import "encoding/json"

// DataSource tags where a response's reviews came from.
type DataSource string

const (
	SourceUpstream DataSource = "hostaway-api"
	SourceFallback DataSource = "mock-data"
)

// --------------------------------------------
// Upstream-shaped review (canonical raw record)
// --------------------------------------------
type CategoryRating struct {
	Category string   `json:"category"`
	Rating   *float64 `json:"rating"`
}

// RawReview is the canonical shape every upstream document is mapped into.
// The listing id is numeric here and only becomes a string during
// normalization. The review id keeps its numeric text so long synthesized ids
// survive exactly.
type RawReview struct {
	ID             json.Number      `json:"id"`
	ListingID      float64          `json:"listingId"`
	ListingName    string           `json:"listingName"`
	Channel        string           `json:"channel"`
	Type           string           `json:"type"`
	Status         string           `json:"status"`
	Rating         *float64         `json:"rating"`
	PublicReview   *string          `json:"publicReview"`
	PrivateReview  *string          `json:"privateReview,omitempty"`
	ReviewCategory []CategoryRating `json:"reviewCategory,omitempty"`
	SubmittedAt    string           `json:"submittedAt"`
	GuestName      string           `json:"guestName,omitempty"`
	StayDate       string           `json:"stayDate,omitempty"`
	Language       string           `json:"language,omitempty"`
}

// --------------------------------------------
// Presentation-ready review
// --------------------------------------------
type NormalizedCategoryRating struct {
	Key             string   `json:"key"`
	Label           string   `json:"label"`
	Rating          *float64 `json:"rating"`
	RatingOutOfFive *float64 `json:"ratingOutOfFive"`
}

type NormalizedReview struct {
	ID              string                     `json:"id"`
	ListingID       string                     `json:"listingId"`
	ListingName     string                     `json:"listingName"`
	Channel         string                     `json:"channel"`
	Type            string                     `json:"type"`
	Status          string                     `json:"status"`
	Rating          *float64                   `json:"rating"`
	RatingOutOfFive *float64                   `json:"ratingOutOfFive"`
	Categories      []NormalizedCategoryRating `json:"categories"`
	SubmittedAt     string                     `json:"submittedAt"`
	GuestName       string                     `json:"guestName"`
	PublicReview    *string                    `json:"publicReview"`
	PrivateReview   *string                    `json:"privateReview"`
	StayDate        *string                    `json:"stayDate"`
}

// --------------------------------------------
// Per-listing aggregate
// --------------------------------------------
type TimeSeriesPoint struct {
	Period        string   `json:"period"` // YYYY-MM, UTC
	AverageRating *float64 `json:"averageRating"`
	ReviewCount   int      `json:"reviewCount"`
}

type RatingDistribution struct {
	Low         int `json:"low"`         // < 5
	Adequate    int `json:"adequate"`    // [5, 7)
	Good        int `json:"good"`        // [7, 8.5)
	Great       int `json:"great"`       // [8.5, 9.5)
	Exceptional int `json:"exceptional"` // >= 9.5
}

// Total is the number of rated reviews counted across all bins.
func (d RatingDistribution) Total() int {
	return d.Low + d.Adequate + d.Good + d.Great + d.Exceptional
}

type NormalizedListing struct {
	ListingID              string             `json:"listingId"`
	ListingName            string             `json:"listingName"`
	TotalReviews           int                `json:"totalReviews"`
	AverageRating          *float64           `json:"averageRating"`
	AverageRatingOutOfFive *float64           `json:"averageRatingOutOfFive"`
	CategoryAverages       map[string]float64 `json:"categoryAverages"`
	LastReviewDate         *string            `json:"lastReviewDate"`
	RatingDistribution     RatingDistribution `json:"ratingDistribution"`
	TimeSeries             []TimeSeriesPoint  `json:"timeSeries"`
	Reviews                []NormalizedReview `json:"reviews"`
}

// --------------------------------------------
// Response payload
// --------------------------------------------
type Filters struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// IngestionStats describes what the upstream mapper did with a batch.
type IngestionStats struct {
	Received              int `json:"received"`
	Dropped               int `json:"dropped"`
	SubstitutedTimestamps int `json:"substitutedTimestamps"`
	SynthesizedIDs        int `json:"synthesizedIds"`
}

type Summary struct {
	TotalListings int             `json:"totalListings"`
	TotalReviews  int             `json:"totalReviews"`
	Channels      []string        `json:"channels"`
	GeneratedAt   string          `json:"generatedAt"`
	DataSource    DataSource      `json:"dataSource"`
	Filters       Filters         `json:"filters"`
	Ingestion     *IngestionStats `json:"ingestion,omitempty"`
}

type NormalizedReviewResponse struct {
	Listings      []NormalizedListing `json:"listings"`
	Summary       Summary             `json:"summary"`
	UpstreamError *string             `json:"upstreamError,omitempty"`
}

// --------------------------------------------
// Request criteria
// --------------------------------------------

// Criteria are the query predicates shared by the upstream fetch and the filter
// stage. Empty strings mean "not supplied". Date bounds are expected to be
// parseable already.
type Criteria struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	ListingID string `json:"listingId,omitempty"`
	Channel   string `json:"channel,omitempty"`
}

// IsZero reports whether no predicate is set.
func (c Criteria) IsZero() bool {
	return c.StartDate == "" && c.EndDate == "" && c.ListingID == "" && c.Channel == ""
}

// HasDateBounds reports whether either date bound is set.
func (c Criteria) HasDateBounds() bool {
	return c.StartDate != "" || c.EndDate != ""
}

// UpstreamBatch is what a successful upstream fetch yields: mapped reviews plus
// the mapper's bookkeeping for the batch.
type UpstreamBatch struct {
	Reviews []RawReview
	Stats   IngestionStats
}
