package hostaway_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-insights-go/internal/hostaway"
	"review-insights-go/internal/types"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func clock() time.Time { return fixedNow }

func doc(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestMap_CanonicalDocument(t *testing.T) {
	m := hostaway.NewMapper(clock)
	r, ok := m.Map(doc(t, `{
		"id": 7453,
		"listingId": 101,
		"listingName": "Shoreditch Heights",
		"channel": "airbnb",
		"type": "host-to-guest",
		"status": "published",
		"rating": 9.2,
		"publicReview": "Great stay",
		"reviewCategory": [{"category": "cleanliness", "rating": 10}],
		"submittedAt": "2024-08-21 22:45:14",
		"guestName": "Shane",
		"stayDate": "2024-08-15",
		"language": "en"
	}`), 0)
	require.True(t, ok)

	assert.Equal(t, json.Number("7453"), r.ID)
	assert.Equal(t, 101.0, r.ListingID)
	assert.Equal(t, "Shoreditch Heights", r.ListingName)
	assert.Equal(t, "airbnb", r.Channel)
	assert.Equal(t, "host-to-guest", r.Type)
	require.NotNil(t, r.Rating)
	assert.Equal(t, 9.2, *r.Rating)
	require.NotNil(t, r.PublicReview)
	assert.Equal(t, "Great stay", *r.PublicReview)
	assert.Nil(t, r.PrivateReview)
	assert.Equal(t, []types.CategoryRating{{Category: "cleanliness", Rating: ptr(10.0)}}, r.ReviewCategory)
	assert.Equal(t, "2024-08-21 22:45:14", r.SubmittedAt, "timestamps are canonicalized later, not here")
	assert.Equal(t, "Shane", r.GuestName)
	assert.Equal(t, "2024-08-15", r.StayDate)
	assert.Equal(t, "en", r.Language)
}

func ptr[T any](v T) *T { return &v }

func TestMap_ListingIDAliases(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want float64
	}{
		{"primary", `{"listingId": 1, "listing_id": 2, "listing": {"id": 3}}`, 1},
		{"legacy", `{"listing_id": 2, "listing": {"id": 3}}`, 2},
		{"nested", `{"listing": {"id": 3}}`, 3},
		{"numeric string", `{"listingId": " 42 "}`, 42},
		{"unparseable primary falls through", `{"listingId": "abc", "listing_id": "7"}`, 7},
		{"null primary falls through", `{"listingId": null, "listing": {"id": 9}}`, 9},
	}
	m := hostaway.NewMapper(clock)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := m.Map(doc(t, tt.doc), 0)
			require.True(t, ok)
			assert.Equal(t, tt.want, r.ListingID)
		})
	}
}

func TestMap_RejectsUngroupable(t *testing.T) {
	m := hostaway.NewMapper(clock)
	for _, s := range []string{
		`{"id": 1}`,
		`{"listingId": ""}`,
		`{"listingId": "n/a", "listing": {"name": "x"}}`,
		`{"listing": "101"}`,
		`"just a string"`,
		`[1, 2]`,
	} {
		_, ok := m.Map(doc(t, s), 0)
		assert.False(t, ok, s)
	}
}

func TestMap_FieldAliases(t *testing.T) {
	m := hostaway.NewMapper(clock)
	r, ok := m.Map(doc(t, `{
		"review_id": 55,
		"listing_id": 8,
		"listing": {"name": "Nested Name"},
		"source": "vrbo",
		"reviewType": "guest-to-host",
		"score": "8.5",
		"comment": "Nice",
		"private_comment": "Fix the tap",
		"created_at": "2024-05-01T10:00:00Z",
		"author": "Ana",
		"arrival_date": "2024-04-28",
		"scores": [{"name": "value", "score": "7"}, {"key": "location", "points": 9}]
	}`), 0)
	require.True(t, ok)

	assert.Equal(t, json.Number("55"), r.ID)
	assert.Equal(t, "Nested Name", r.ListingName)
	assert.Equal(t, "vrbo", r.Channel)
	assert.Equal(t, 8.5, *r.Rating)
	assert.Equal(t, "Nice", *r.PublicReview)
	assert.Equal(t, "Fix the tap", *r.PrivateReview)
	assert.Equal(t, "2024-05-01T10:00:00Z", r.SubmittedAt)
	assert.Equal(t, "Ana", r.GuestName)
	assert.Equal(t, "2024-04-28", r.StayDate)
	assert.Equal(t, []types.CategoryRating{
		{Category: "value", Rating: ptr(7.0)},
		{Category: "location", Rating: ptr(9.0)},
	}, r.ReviewCategory)
}

func TestMap_Defaults(t *testing.T) {
	m := hostaway.NewMapper(clock)
	r, ok := m.Map(doc(t, `{"id": 1, "listingId": 303, "submittedAt": "2024-01-01", "channel": "", "guestName": ""}`), 0)
	require.True(t, ok)

	assert.Equal(t, "Listing 303", r.ListingName)
	assert.Equal(t, hostaway.DefaultChannel, r.Channel, "empty strings resolve to absent")
	assert.Equal(t, hostaway.DefaultType, r.Type)
	assert.Equal(t, hostaway.DefaultStatus, r.Status)
	assert.Equal(t, hostaway.DefaultGuestName, r.GuestName)
	assert.Nil(t, r.Rating)
	assert.Nil(t, r.PublicReview)
	assert.NotNil(t, r.ReviewCategory)
	assert.Empty(t, r.ReviewCategory)
	assert.Empty(t, r.StayDate)
}

func TestMap_RatingNeverRejects(t *testing.T) {
	m := hostaway.NewMapper(clock)
	for _, s := range []string{
		`{"listingId": 1, "rating": "excellent"}`,
		`{"listingId": 1, "rating": true}`,
		`{"listingId": 1, "rating": {"value": 9}}`,
		`{"listingId": 1, "rating": "NaN"}`,
		`{"listingId": 1, "rating": "Inf"}`,
	} {
		r, ok := m.Map(doc(t, s), 0)
		require.True(t, ok, s)
		assert.Nil(t, r.Rating, s)
	}
}

func TestMap_CategoriesWithoutNameAreSkipped(t *testing.T) {
	m := hostaway.NewMapper(clock)
	r, ok := m.Map(doc(t, `{"listingId": 1, "reviewCategory": [
		{"rating": 9},
		{"category": "", "rating": 8},
		"cleanliness",
		{"category": "check_in", "rating": "oops"}
	]}`), 0)
	require.True(t, ok)
	assert.Equal(t, []types.CategoryRating{{Category: "check_in"}}, r.ReviewCategory)
}

func TestMap_FirstArrayContainerWins(t *testing.T) {
	m := hostaway.NewMapper(clock)
	r, ok := m.Map(doc(t, `{"listingId": 1, "reviewCategory": "n/a", "categories": [{"category": "staff", "rating": 10}], "scores": [{"category": "value", "rating": 1}]}`), 0)
	require.True(t, ok)
	require.Len(t, r.ReviewCategory, 1)
	assert.Equal(t, "staff", r.ReviewCategory[0].Category)
}

func TestMapAll_SubstitutesMissingTimestamp(t *testing.T) {
	m := hostaway.NewMapper(clock)
	reviews, stats := m.MapAll([]any{
		doc(t, `{"id": 1, "listingId": 5}`),
		doc(t, `{"id": 2, "listingId": 5, "submittedAt": "2024-01-01T00:00:00Z"}`),
	})
	require.Len(t, reviews, 2)
	assert.Equal(t, "2025-03-14T09:26:53.000Z", reviews[0].SubmittedAt)
	assert.Equal(t, "2024-01-01T00:00:00Z", reviews[1].SubmittedAt)
	assert.Equal(t, 1, stats.SubstitutedTimestamps)
}

func TestMapAll_SynthesizesUniqueIDs(t *testing.T) {
	m := hostaway.NewMapper(clock)
	reviews, stats := m.MapAll([]any{
		doc(t, `{"listingId": 5}`),
		doc(t, `{"listingId": 5}`),
		doc(t, `{"id": "x", "listingId": 5}`),
	})
	require.Len(t, reviews, 3)
	assert.Equal(t, 3, stats.SynthesizedIDs)

	assert.Equal(t, "17419444130000", types.FormatReviewID(reviews[0].ID))
	assert.Equal(t, "17419444130001", types.FormatReviewID(reviews[1].ID))
}

func TestMapAll_SynthesizedIDsStayUniqueInLargeBatches(t *testing.T) {
	m := hostaway.NewMapper(clock)
	docs := make([]any, 1200)
	for i := range docs {
		docs[i] = map[string]any{"listingId": 5.0, "submittedAt": "2024-01-01"}
	}

	reviews, stats := m.MapAll(docs)
	require.Len(t, reviews, 1200)
	assert.Equal(t, 1200, stats.SynthesizedIDs)

	seen := make(map[string]int, len(reviews))
	for i, r := range reviews {
		id := types.FormatReviewID(r.ID)
		if prev, dup := seen[id]; dup {
			t.Fatalf("index %d collides with %d: %s", i, prev, id)
		}
		seen[id] = i
	}
	assert.Equal(t, "17419444130001000", types.FormatReviewID(reviews[1000].ID))
	assert.Equal(t, "17419444130001001", types.FormatReviewID(reviews[1001].ID))
}

func TestMap_IDAliasesKeepText(t *testing.T) {
	m := hostaway.NewMapper(clock)
	tests := map[string]json.Number{
		`{"listingId": 1, "id": 7453}`:                      "7453",
		`{"listingId": 1, "reviewId": " 88 "}`:              "88",
		`{"listingId": 1, "id": "n/a", "externalId": "91"}`: "91",
	}
	for in, want := range tests {
		r, ok := m.Map(doc(t, in), 0)
		require.True(t, ok, in)
		assert.Equal(t, want, r.ID, in)
	}
}

func TestMapAll_CountsDrops(t *testing.T) {
	m := hostaway.NewMapper(clock)
	reviews, stats := m.MapAll([]any{
		doc(t, `{"id": 1, "listingId": 5, "submittedAt": "2024-01-01"}`),
		doc(t, `{"id": 2}`),
		nil,
	})
	assert.Len(t, reviews, 1)
	assert.Equal(t, types.IngestionStats{Received: 3, Dropped: 2}, stats)
}
