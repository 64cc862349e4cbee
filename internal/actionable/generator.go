package actionable

import (
	"fmt"
	"sort"

	"review-insights-go/internal/normalize"
	"review-insights-go/internal/types"
)

const (
	// FocusThreshold flags category averages below this score.
	FocusThreshold = 8.0
	// IssueThreshold counts individual category ratings at or below this score.
	IssueThreshold = 7.0
	// MaxItems caps focus areas and recurring issues.
	MaxItems = 4
)

type FocusArea struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type RecurringIssue struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Trend struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Delta float64 `json:"delta"`
}

type ActionCard struct {
	ListingID       string           `json:"listingId"`
	ListingName     string           `json:"listingName"`
	FocusAreas      []FocusArea      `json:"focusAreas"`
	RecurringIssues []RecurringIssue `json:"recurringIssues"`
	Trend           *Trend           `json:"trend"`
	Insight         string           `json:"insight"`
	Action          string           `json:"action"`
}

func Generate(l types.NormalizedListing) ActionCard {
	card := ActionCard{
		ListingID:       l.ListingID,
		ListingName:     l.ListingName,
		FocusAreas:      FocusAreas(l),
		RecurringIssues: RecurringIssues(l),
		Trend:           MonthlyTrend(l),
	}

	switch {
	case len(card.FocusAreas) > 0:
		worst := card.FocusAreas[0]
		card.Insight = fmt.Sprintf("%s averages %.2f across recent reviews", worst.Label, worst.Score)
		card.Action = fmt.Sprintf("Review %s with the operations team before the next check-in", worst.Label)
	case card.Trend != nil && card.Trend.Delta < 0:
		card.Insight = fmt.Sprintf("Average rating fell %.2f points from %s to %s", -card.Trend.Delta, card.Trend.From, card.Trend.To)
		card.Action = "Read the latest private feedback and follow up with recent guests"
	default:
		card.Insight = "No weak categories detected"
		card.Action = "Monitor and collect more reviews"
	}
	return card
}

// FocusAreas are the weakest category averages under FocusThreshold.
func FocusAreas(l types.NormalizedListing) []FocusArea {
	out := []FocusArea{}
	for key, score := range l.CategoryAverages {
		if score < FocusThreshold {
			out = append(out, FocusArea{Key: key, Label: normalize.Label(key), Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > MaxItems {
		out = out[:MaxItems]
	}
	return out
}

// RecurringIssues counts category ratings at or below IssueThreshold.
func RecurringIssues(l types.NormalizedListing) []RecurringIssue {
	counts := map[string]*RecurringIssue{}
	var order []string
	for _, r := range l.Reviews {
		for _, c := range r.Categories {
			if c.Rating == nil || *c.Rating > IssueThreshold {
				continue
			}
			issue, ok := counts[c.Key]
			if !ok {
				issue = &RecurringIssue{Key: c.Key, Label: c.Label}
				counts[c.Key] = issue
				order = append(order, c.Key)
			}
			issue.Count++
		}
	}
	out := make([]RecurringIssue, 0, len(order))
	for _, k := range order {
		out = append(out, *counts[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > MaxItems {
		out = out[:MaxItems]
	}
	return out
}

// MonthlyTrend compares the two most recent months; nil unless both are rated.
func MonthlyTrend(l types.NormalizedListing) *Trend {
	n := len(l.TimeSeries)
	if n < 2 {
		return nil
	}
	prev, latest := l.TimeSeries[n-2], l.TimeSeries[n-1]
	if prev.AverageRating == nil || latest.AverageRating == nil {
		return nil
	}
	return &Trend{
		From:  prev.Period,
		To:    latest.Period,
		Delta: normalize.Round(*latest.AverageRating-*prev.AverageRating, 2),
	}
}
