package aggregator

import (
	"math"
	"sort"
	"time"

	"review-insights-go/internal/normalize"
	"review-insights-go/internal/reviewtime"
	"review-insights-go/internal/types"
)

// runningMean is a sum/count pair; the mean is rounded once, at finalization.
type runningMean struct {
	sum   float64
	count int
}

func (m *runningMean) add(v float64) {
	m.sum += v
	m.count++
}

func (m runningMean) mean() *float64 {
	if m.count == 0 {
		return nil
	}
	v := normalize.Round(m.sum/float64(m.count), 2)
	return &v
}

// listingAcc is owned by a single Aggregate call and never escapes it.
type listingAcc struct {
	id           string
	name         string
	total        int
	rating       runningMean
	distribution types.RatingDistribution
	categories   map[string]*runningMean
	categoryKeys []string
	months       map[string]*runningMean
	lastAt       time.Time
	lastReview   string
	reviews      []types.NormalizedReview
}

func newListingAcc(r types.NormalizedReview) *listingAcc {
	return &listingAcc{
		id:         r.ListingID,
		name:       r.ListingName,
		categories: map[string]*runningMean{},
		months:     map[string]*runningMean{},
	}
}

// Bin increments the one distribution bin that rating falls in.
func Bin(d *types.RatingDistribution, rating float64) {
	switch {
	case rating < 5:
		d.Low++
	case rating < 7:
		d.Adequate++
	case rating < 8.5:
		d.Good++
	case rating < 9.5:
		d.Great++
	default:
		d.Exceptional++
	}
}

func (a *listingAcc) add(r types.NormalizedReview) {
	a.total++

	if r.Rating != nil {
		a.rating.add(*r.Rating)
		Bin(&a.distribution, *r.Rating)
	}

	if at, ok := reviewtime.Parse(r.SubmittedAt); ok {
		if a.lastReview == "" || at.After(a.lastAt) {
			a.lastAt = at
			a.lastReview = r.SubmittedAt
		}
		period := reviewtime.Period(at)
		bucket, ok := a.months[period]
		if !ok {
			bucket = &runningMean{}
			a.months[period] = bucket
		}
		if r.Rating != nil {
			bucket.add(*r.Rating)
		}
	}

	for _, c := range r.Categories {
		if c.Rating == nil {
			continue
		}
		m, ok := a.categories[c.Key]
		if !ok {
			m = &runningMean{}
			a.categories[c.Key] = m
			a.categoryKeys = append(a.categoryKeys, c.Key)
		}
		m.add(*c.Rating)
	}

	a.reviews = append(a.reviews, r)
}

func (a *listingAcc) finalize() types.NormalizedListing {
	avg := a.rating.mean()

	categoryAverages := make(map[string]float64, len(a.categories))
	for _, key := range a.categoryKeys {
		if v := a.categories[key].mean(); v != nil {
			categoryAverages[key] = *v
		}
	}

	series := make([]types.TimeSeriesPoint, 0, len(a.months))
	for period, m := range a.months {
		series = append(series, types.TimeSeriesPoint{
			Period:        period,
			AverageRating: m.mean(),
			ReviewCount:   m.count,
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })

	// canonical timestamps sort lexically; anything left unparsed sorts as plain text
	sort.SliceStable(a.reviews, func(i, j int) bool {
		return a.reviews[i].SubmittedAt > a.reviews[j].SubmittedAt
	})

	var last *string
	if a.lastReview != "" {
		s := a.lastReview
		last = &s
	}

	return types.NormalizedListing{
		ListingID:              a.id,
		ListingName:            a.name,
		TotalReviews:           a.total,
		AverageRating:          avg,
		AverageRatingOutOfFive: normalize.OutOfFive(avg),
		CategoryAverages:       categoryAverages,
		LastReviewDate:         last,
		RatingDistribution:     a.distribution,
		TimeSeries:             series,
		Reviews:                a.reviews,
	}
}

// Aggregate folds normalized reviews into one listing per listing id in a single
// pass, then finalizes each listing. Listings are returned best-rated first;
// unrated listings come last in first-seen order.
func Aggregate(reviews []types.NormalizedReview) []types.NormalizedListing {
	accs := map[string]*listingAcc{}
	var order []string
	for _, r := range reviews {
		acc, ok := accs[r.ListingID]
		if !ok {
			acc = newListingAcc(r)
			accs[r.ListingID] = acc
			order = append(order, r.ListingID)
		}
		acc.add(r)
	}

	listings := make([]types.NormalizedListing, 0, len(order))
	for _, id := range order {
		listings = append(listings, accs[id].finalize())
	}
	SortByRating(listings)
	return listings
}

// SortByRating orders listings by average rating, descending, with unrated
// listings ranked below every rated one.
func SortByRating(listings []types.NormalizedListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return sortKey(listings[i]) > sortKey(listings[j])
	})
}

func sortKey(l types.NormalizedListing) float64 {
	if l.AverageRating == nil {
		return math.Inf(-1)
	}
	return *l.AverageRating
}
