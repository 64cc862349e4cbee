package actionable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-insights-go/internal/actionable"
	"review-insights-go/internal/aggregator"
	"review-insights-go/internal/dataset"
	"review-insights-go/internal/normalize"
	"review-insights-go/internal/types"
)

func ptr[T any](v T) *T { return &v }

func listing(t *testing.T, id string) types.NormalizedListing {
	t.Helper()
	raws, err := dataset.Embedded()
	require.NoError(t, err)
	for _, l := range aggregator.Aggregate(normalize.Reviews(raws)) {
		if l.ListingID == id {
			return l
		}
	}
	t.Fatalf("listing %s missing from fixture", id)
	return types.NormalizedListing{}
}

func TestGenerate_WeakCategories(t *testing.T) {
	card := actionable.Generate(listing(t, "303"))

	assert.Equal(t, "Soho Boutique Flat", card.ListingName)
	assert.Equal(t, []actionable.FocusArea{
		{Key: "value", Label: "Value", Score: 7},
		{Key: "amenities", Label: "Amenities", Score: 7.33},
	}, card.FocusAreas)
	assert.Equal(t, []actionable.RecurringIssue{
		{Key: "amenities", Label: "Amenities", Count: 2},
		{Key: "cleanliness", Label: "Cleanliness", Count: 1},
		{Key: "communication", Label: "Communication", Count: 1},
		{Key: "value", Label: "Value", Count: 1},
	}, card.RecurringIssues)
	require.NotNil(t, card.Trend)
	assert.Equal(t, actionable.Trend{From: "2024-09", To: "2024-10", Delta: -2.4}, *card.Trend)
	assert.Equal(t, "Value averages 7.00 across recent reviews", card.Insight)
	assert.Contains(t, card.Action, "Value")
}

func TestGenerate_HealthyListing(t *testing.T) {
	card := actionable.Generate(listing(t, "101"))

	assert.NotNil(t, card.FocusAreas)
	assert.Empty(t, card.FocusAreas)
	assert.Empty(t, card.RecurringIssues)
	require.NotNil(t, card.Trend)
	assert.Equal(t, 1.2, card.Trend.Delta)
	assert.Equal(t, "No weak categories detected", card.Insight)
}

func TestGenerate_FallingTrend(t *testing.T) {
	card := actionable.Generate(types.NormalizedListing{
		ListingID:        "9",
		CategoryAverages: map[string]float64{"cleanliness": 9},
		TimeSeries: []types.TimeSeriesPoint{
			{Period: "2024-08", AverageRating: ptr(9.5), ReviewCount: 2},
			{Period: "2024-09", AverageRating: ptr(8.25), ReviewCount: 1},
		},
	})
	require.NotNil(t, card.Trend)
	assert.Equal(t, -1.25, card.Trend.Delta)
	assert.Equal(t, "Average rating fell 1.25 points from 2024-08 to 2024-09", card.Insight)
}

func TestFocusAreas_CapsAndOrders(t *testing.T) {
	got := actionable.FocusAreas(types.NormalizedListing{CategoryAverages: map[string]float64{
		"a": 6, "b": 5, "c": 7.5, "d": 5, "e": 7.9, "f": 8, "g": 9,
	}})
	require.Len(t, got, actionable.MaxItems)
	assert.Equal(t, []string{"b", "d", "a", "c"}, []string{got[0].Key, got[1].Key, got[2].Key, got[3].Key})
}

func TestMonthlyTrend_NeedsTwoRatedMonths(t *testing.T) {
	assert.Nil(t, actionable.MonthlyTrend(types.NormalizedListing{}))
	assert.Nil(t, actionable.MonthlyTrend(types.NormalizedListing{TimeSeries: []types.TimeSeriesPoint{
		{Period: "2024-01", AverageRating: ptr(8.0), ReviewCount: 1},
	}}))
	assert.Nil(t, actionable.MonthlyTrend(types.NormalizedListing{TimeSeries: []types.TimeSeriesPoint{
		{Period: "2024-01", AverageRating: ptr(8.0), ReviewCount: 1},
		{Period: "2024-02"},
	}}))
}
