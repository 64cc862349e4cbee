package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"review-insights-go/internal/actionable"
	"review-insights-go/internal/pipeline"
	"review-insights-go/internal/report"
	"review-insights-go/internal/reviewtime"
	"review-insights-go/internal/types"
)

const failureMessage = "Unable to load Hostaway reviews."

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type errorBody struct {
	Message string `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "ok")
}

func (s *Server) reviews(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "reviews")
	criteria := parseCriteria(r)
	refinement := parseRefinement(r)

	start := time.Now()
	resp := s.pipeline.Run(r.Context(), criteria)
	if !refinement.IsZero() {
		resp = pipeline.Refine(resp, refinement)
	}
	reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).
		WithField("data_source", resp.Summary.DataSource).
		WithField("listings", len(resp.Listings)).
		Info("reviews served")

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listing(w http.ResponseWriter, r *http.Request) {
	l, ok := s.findListing(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	l, ok := s.findListing(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, actionable.Generate(l))
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "export")
	resp := s.pipeline.Run(r.Context(), parseCriteria(r))
	if refinement := parseRefinement(r); !refinement.IsZero() {
		resp = pipeline.Refine(resp, refinement)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, resp); err != nil {
		reqLog.WithError(err).Error("workbook export failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: failureMessage})
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="hostaway-reviews.xlsx"`)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		reqLog.WithError(err).Error("failed to write workbook")
	}
}

func (s *Server) findListing(w http.ResponseWriter, r *http.Request) (types.NormalizedListing, bool) {
	id := mux.Vars(r)["listingId"]
	criteria := parseCriteria(r)
	criteria.ListingID = id

	resp := s.pipeline.Run(r.Context(), criteria)
	for _, l := range resp.Listings {
		if l.ListingID == id {
			return l, true
		}
	}
	s.log.WithRequest(r).WithField("listing_id", id).Info("listing not found")
	writeJSON(w, http.StatusNotFound, errorBody{Message: "Listing not found."})
	return types.NormalizedListing{}, false
}

// parseCriteria keeps date bounds only when they parse; anything else is
// treated as absent.
func parseCriteria(r *http.Request) types.Criteria {
	q := r.URL.Query()
	return types.Criteria{
		StartDate: validDate(q.Get("startDate")),
		EndDate:   validDate(q.Get("endDate")),
		ListingID: q.Get("listingId"),
		Channel:   q.Get("channel"),
	}
}

func parseRefinement(r *http.Request) pipeline.Refinement {
	q := r.URL.Query()
	ref := pipeline.Refinement{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(q.Get("minRating")), 64); err == nil && v > 0 {
		ref.MinRating = v
	}
	switch s := q.Get("sort"); s {
	case pipeline.SortScoreAsc, pipeline.SortRecent:
		ref.Sort = s
	}
	return ref
}

func validDate(v string) string {
	if _, ok := reviewtime.Parse(v); !ok {
		return ""
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
