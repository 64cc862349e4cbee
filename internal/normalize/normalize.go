// Package normalize turns canonical raw reviews into presentation-ready records.
package normalize

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"review-insights-go/internal/reviewtime"
	"review-insights-go/internal/types"
)

const (
	// DefaultChannel labels reviews whose upstream carried no channel.
	DefaultChannel = "hostaway"
	// DefaultGuestName stands in for an anonymous reviewer.
	DefaultGuestName = "Guest"
)

// epsilon nudges values like 1.005 that sit just below the half step in binary.
const epsilon = 2.220446049250313e-16

// Round rounds v to the given number of decimal places. Halves round toward
// positive infinity, so -8.125 becomes -8.12 and 8.125 becomes 8.13.
func Round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Floor((v+epsilon)*factor+0.5) / factor
}

// Rating rounds a nullable rating to two decimals.
func Rating(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	r := Round(*v, 2)
	return &r
}

// OutOfFive halves a ten-point rating, keeping null as null.
func OutOfFive(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v/2, 2)
	return &r
}

// Label turns a category key like "respect_house_rules" into "Respect House Rules".
func Label(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Review converts one raw review. It is total: every input yields a record.
func Review(raw types.RawReview) types.NormalizedReview {
	rating := Rating(raw.Rating)

	categories := make([]types.NormalizedCategoryRating, 0, len(raw.ReviewCategory))
	for _, c := range raw.ReviewCategory {
		cr := Rating(c.Rating)
		categories = append(categories, types.NormalizedCategoryRating{
			Key:             c.Category,
			Label:           Label(c.Category),
			Rating:          cr,
			RatingOutOfFive: OutOfFive(cr),
		})
	}

	channel := raw.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	guest := raw.GuestName
	if guest == "" {
		guest = DefaultGuestName
	}

	var stayDate *string
	if raw.StayDate != "" {
		s := reviewtime.Canonical(raw.StayDate)
		stayDate = &s
	}

	return types.NormalizedReview{
		ID:              types.FormatReviewID(raw.ID),
		ListingID:       types.FormatID(raw.ListingID),
		ListingName:     raw.ListingName,
		Channel:         channel,
		Type:            raw.Type,
		Status:          raw.Status,
		Rating:          rating,
		RatingOutOfFive: OutOfFive(rating),
		Categories:      categories,
		SubmittedAt:     reviewtime.Canonical(raw.SubmittedAt),
		GuestName:       guest,
		PublicReview:    raw.PublicReview,
		PrivateReview:   raw.PrivateReview,
		StayDate:        stayDate,
	}
}

// Reviews converts a batch, preserving order.
func Reviews(raws []types.RawReview) []types.NormalizedReview {
	out := make([]types.NormalizedReview, 0, len(raws))
	for _, r := range raws {
		out = append(out, Review(r))
	}
	return out
}
