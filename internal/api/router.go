// Package api exposes the review pipeline over HTTP.
package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"review-insights-go/internal/logger"
	"review-insights-go/internal/metrics"
	"review-insights-go/internal/pipeline"
)

// Server holds the request handlers' dependencies.
type Server struct {
	pipeline       *pipeline.Pipeline
	log            *logger.Logger
	metrics        *metrics.Metrics
	allowedOrigins []string
}

type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

func NewServer(p *pipeline.Pipeline, log *logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{pipeline: p, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route table wrapped in recovery, compression and, when
// origins are configured, CORS middleware.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.contain)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	r.HandleFunc("/api/reviews/hostaway", s.reviews).Methods(http.MethodGet)
	r.HandleFunc("/api/reviews/hostaway/export.xlsx", s.export).Methods(http.MethodGet)
	r.HandleFunc("/api/reviews/hostaway/listings/{listingId}", s.listing).Methods(http.MethodGet)
	r.HandleFunc("/api/reviews/hostaway/listings/{listingId}/insights", s.insights).Methods(http.MethodGet)

	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	var h http.Handler = r
	h = handlers.CompressHandler(h)
	if len(s.allowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.allowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", logger.RequestIDHeader}),
		)(h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.log.Component("recovery")),
		handlers.PrintRecoveryStack(false),
	)(h)
}

// contain turns a panicking handler into a generic 500 without leaking details.
func (s *Server) contain(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithRequest(r).WithField("panic", fmt.Sprint(rec)).Error("handler panicked")
				writeJSON(w, http.StatusInternalServerError, errorBody{Message: failureMessage})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
