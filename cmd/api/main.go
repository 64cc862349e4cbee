package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"review-insights-go/internal/api"
	"review-insights-go/internal/config"
	"review-insights-go/internal/dataset"
	"review-insights-go/internal/hostaway"
	"review-insights-go/internal/logger"
	"review-insights-go/internal/metrics"
	"review-insights-go/internal/pipeline"
	"review-insights-go/internal/types"
)

func main() {
	_ = godotenv.Load() // loads .env

	cfg := config.Load()
	log := logger.NewWithOptions(logger.Options{Environment: cfg.Environment, Level: cfg.LogLevel})
	log.WithField("service", "review-insights-go").Info("starting service")

	fallback, err := loadFallback(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to load fallback dataset")
	}
	sum := dataset.Summarize(fallback)
	log.WithField("total_reviews", sum.TotalReviews).
		WithField("listings", sum.Listings).
		WithField("channels", sum.Channels).
		Info("fallback dataset loaded")

	if !cfg.Hostaway.Configured() {
		log.Warn("hostaway credentials missing; every request will be served from the fallback dataset")
	}

	m := metrics.New()
	client := hostaway.NewClient(cfg.Hostaway, hostaway.WithLogger(log))
	coord := pipeline.NewCoordinator(client, fallback, log, m)
	srv := api.NewServer(
		pipeline.New(coord, m, time.Now),
		log,
		api.WithMetrics(m),
		api.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	)

	addr := fmt.Sprintf(":%s", cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func loadFallback(cfg config.Config, log *logger.Logger) ([]types.RawReview, error) {
	if cfg.FallbackDatasetPath == "" {
		return dataset.Embedded()
	}
	log.WithField("dataset_path", cfg.FallbackDatasetPath).Info("loading fallback dataset override")
	reviews, stats, err := dataset.Load(cfg.FallbackDatasetPath, hostaway.NewMapper(time.Now))
	if err != nil {
		return nil, err
	}
	if stats.Dropped > 0 {
		log.WithField("dropped", stats.Dropped).Warn("fallback rows without a listing id were skipped")
	}
	return reviews, nil
}
