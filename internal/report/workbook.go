// Package report renders normalized review responses as spreadsheets.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"review-insights-go/internal/types"
)

const (
	ListingsSheet = "Listings"
	ReviewsSheet  = "Reviews"
	SummarySheet  = "Summary"
)

var listingHeaders = []string{
	"listing_id", "listing_name", "total_reviews", "average_rating", "average_rating_out_of_five",
	"last_review_date", "low", "adequate", "good", "great", "exceptional", "category_averages",
}

var reviewHeaders = []string{
	"review_id", "listing_id", "listing_name", "channel", "type", "status", "rating",
	"rating_out_of_five", "submitted_at", "guest_name", "public_review", "private_review", "stay_date", "categories",
}

// Workbook builds an in-memory workbook with Summary, Listings and Reviews sheets.
func Workbook(resp types.NormalizedReviewResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{ListingsSheet, ReviewsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	summary := [][]any{
		{"generated_at", resp.Summary.GeneratedAt},
		{"data_source", string(resp.Summary.DataSource)},
		{"total_listings", resp.Summary.TotalListings},
		{"total_reviews", resp.Summary.TotalReviews},
		{"channels", strings.Join(resp.Summary.Channels, ", ")},
		{"start_date", deref(resp.Summary.Filters.StartDate)},
		{"end_date", deref(resp.Summary.Filters.EndDate)},
	}
	if resp.UpstreamError != nil {
		summary = append(summary, []any{"upstream_error", *resp.UpstreamError})
	}
	for i, row := range summary {
		if err := writeRow(f, SummarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, ListingsSheet, 1, toAny(listingHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, ReviewsSheet, 1, toAny(reviewHeaders)); err != nil {
		return nil, err
	}

	reviewRow := 2
	for i, l := range resp.Listings {
		d := l.RatingDistribution
		row := []any{
			l.ListingID, l.ListingName, l.TotalReviews, number(l.AverageRating), number(l.AverageRatingOutOfFive),
			deref(l.LastReviewDate), d.Low, d.Adequate, d.Good, d.Great, d.Exceptional, categoryAverages(l.CategoryAverages),
		}
		if err := writeRow(f, ListingsSheet, i+2, row); err != nil {
			return nil, err
		}
		for _, r := range l.Reviews {
			row := []any{
				r.ID, r.ListingID, r.ListingName, r.Channel, r.Type, r.Status, number(r.Rating),
				number(r.RatingOutOfFive), r.SubmittedAt, r.GuestName, deref(r.PublicReview),
				deref(r.PrivateReview), deref(r.StayDate), reviewCategories(r.Categories),
			}
			if err := writeRow(f, ReviewsSheet, reviewRow, row); err != nil {
				return nil, err
			}
			reviewRow++
		}
	}
	return f, nil
}

// Write renders the workbook to w.
func Write(w io.Writer, resp types.NormalizedReviewResponse) error {
	f, err := Workbook(resp)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// number leaves null ratings as empty cells.
func number(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func categoryAverages(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, m[k]))
	}
	return strings.Join(parts, "; ")
}

func reviewCategories(cs []types.NormalizedCategoryRating) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		if c.Rating == nil {
			parts = append(parts, c.Key+"=")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%g", c.Key, *c.Rating))
	}
	return strings.Join(parts, "; ")
}
