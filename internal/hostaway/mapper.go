package hostaway

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"review-insights-go/internal/reviewtime"
	"review-insights-go/internal/types"
)

// Defaults applied when the upstream omits a field.
const (
	DefaultChannel   = "hostaway"
	DefaultType      = "guest-to-host"
	DefaultStatus    = "published"
	DefaultGuestName = "Guest"
)

// rule extracts one candidate value from a document.
type rule func(doc map[string]any) (any, bool)

func key(name string) rule {
	return func(doc map[string]any) (any, bool) {
		v, ok := doc[name]
		return v, ok && v != nil
	}
}

func nested(parent, name string) rule {
	return func(doc map[string]any) (any, bool) {
		obj, ok := doc[parent].(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := obj[name]
		return v, ok && v != nil
	}
}

// field is a priority-ordered list of rules for one logical field.
type field []rule

func (f field) number(doc map[string]any) (float64, bool) {
	for _, r := range f {
		if v, ok := r(doc); ok {
			if n, ok := toNumber(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// id resolves a numeric identity and keeps it as text.
func (f field) id(doc map[string]any) (json.Number, bool) {
	for _, r := range f {
		v, ok := r(doc)
		if !ok {
			continue
		}
		n, ok := toNumber(v)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case json.Number:
			return t, true
		case string:
			return json.Number(strings.TrimSpace(t)), true
		case int:
			return json.Number(strconv.Itoa(t)), true
		case int64:
			return json.Number(strconv.FormatInt(t, 10)), true
		}
		return json.Number(types.FormatID(n)), true
	}
	return "", false
}

func (f field) str(doc map[string]any) (string, bool) {
	for _, r := range f {
		if v, ok := r(doc); ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func (f field) array(doc map[string]any) ([]any, bool) {
	for _, r := range f {
		if v, ok := r(doc); ok {
			if arr, ok := v.([]any); ok {
				return arr, true
			}
		}
	}
	return nil, false
}

var (
	listingIDField     = field{key("listingId"), key("listing_id"), nested("listing", "id")}
	ratingField        = field{key("rating"), key("score"), key("overall")}
	submittedAtField   = field{key("submittedAt"), key("submitted_at"), key("createdAt"), key("created_at")}
	guestNameField     = field{key("guestName"), key("guest_name"), key("reviewerName"), key("author")}
	publicReviewField  = field{key("publicReview"), key("public_review"), key("comment"), key("publicComment"), key("public_comment")}
	privateReviewField = field{key("privateReview"), key("private_review"), key("privateComment"), key("private_comment")}
	categoriesField    = field{key("reviewCategory"), key("reviewCategories"), key("categories"), key("scores")}
	listingNameField   = field{key("listingName"), key("listing_name"), nested("listing", "name"), nested("listing", "listingName")}
	idField            = field{key("id"), key("reviewId"), key("review_id"), key("externalId")}
	channelField       = field{key("channel"), key("source"), key("platform")}
	typeField          = field{key("type"), key("reviewType")}
	statusField        = field{key("status")}
	stayDateField      = field{key("stayDate"), key("stay_date"), key("arrivalDate"), key("arrival_date")}
	languageField      = field{key("language")}

	categoryNameField   = field{key("category"), key("name"), key("key")}
	categoryRatingField = field{key("rating"), key("score"), key("value"), key("points")}
)

// toNumber accepts finite numbers and non-blank numeric strings.
func toNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func optionalNumber(f field, doc map[string]any) *float64 {
	n, ok := f.number(doc)
	if !ok {
		return nil
	}
	return &n
}

func optionalString(f field, doc map[string]any) *string {
	s, ok := f.str(doc)
	if !ok {
		return nil
	}
	return &s
}

func stringOr(f field, doc map[string]any, def string) string {
	if s, ok := f.str(doc); ok {
		return s
	}
	return def
}

// Mapper converts loosely shaped upstream documents into RawReview records.
type Mapper struct {
	now func() time.Time
}

func NewMapper(now func() time.Time) *Mapper {
	if now == nil {
		now = time.Now
	}
	return &Mapper{now: now}
}

// MapAll maps a batch. Documents without a numeric listing id are dropped
// silently and only show up in the returned stats.
func (m *Mapper) MapAll(docs []any) ([]types.RawReview, types.IngestionStats) {
	now := m.now()
	stats := types.IngestionStats{Received: len(docs)}
	out := make([]types.RawReview, 0, len(docs))
	for i, d := range docs {
		r, ok := m.mapOne(d, i, now, &stats)
		if !ok {
			stats.Dropped++
			continue
		}
		out = append(out, r)
	}
	return out, stats
}

// Map maps a single document at position index of its batch.
func (m *Mapper) Map(doc any, index int) (types.RawReview, bool) {
	var stats types.IngestionStats
	return m.mapOne(doc, index, m.now(), &stats)
}

func (m *Mapper) mapOne(raw any, index int, now time.Time, stats *types.IngestionStats) (types.RawReview, bool) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return types.RawReview{}, false
	}

	listingID, ok := listingIDField.number(doc)
	if !ok {
		return types.RawReview{}, false
	}

	// Undated records get the current instant. This keeps them visible but can
	// make them look more recent than they are.
	submittedAt, ok := submittedAtField.str(doc)
	if !ok {
		submittedAt = reviewtime.Format(now)
		stats.SubstitutedTimestamps++
	}

	id, ok := idField.id(doc)
	if !ok {
		id = syntheticID(now, index)
		stats.SynthesizedIDs++
	}

	return types.RawReview{
		ID:             id,
		ListingID:      listingID,
		ListingName:    stringOr(listingNameField, doc, "Listing "+types.FormatID(listingID)),
		Channel:        stringOr(channelField, doc, DefaultChannel),
		Type:           stringOr(typeField, doc, DefaultType),
		Status:         stringOr(statusField, doc, DefaultStatus),
		Rating:         optionalNumber(ratingField, doc),
		PublicReview:   optionalString(publicReviewField, doc),
		PrivateReview:  optionalString(privateReviewField, doc),
		ReviewCategory: mapCategories(doc),
		SubmittedAt:    submittedAt,
		GuestName:      stringOr(guestNameField, doc, DefaultGuestName),
		StayDate:       stringOr(stayDateField, doc, ""),
		Language:       stringOr(languageField, doc, ""),
	}, true
}

func mapCategories(doc map[string]any) []types.CategoryRating {
	items, ok := categoriesField.array(doc)
	if !ok {
		return []types.CategoryRating{}
	}
	out := make([]types.CategoryRating, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, ok := categoryNameField.str(obj)
		if !ok {
			continue
		}
		out = append(out, types.CategoryRating{
			Category: name,
			Rating:   optionalNumber(categoryRatingField, obj),
		})
	}
	return out
}

// syntheticID concatenates the batch clock in milliseconds with the record's
// position; unique within a batch only. It stays text because the result can
// exceed the integers a float64 holds exactly.
func syntheticID(now time.Time, index int) json.Number {
	return json.Number(strconv.FormatInt(now.UnixMilli(), 10) + strconv.Itoa(index))
}
