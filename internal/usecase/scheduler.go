package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsIndexer/internal/ports"
)

// Scheduler wires the cron-like driver with the sitemap refresh.
type Scheduler struct {
	driver   ports.Scheduler
	sitemaps *SitemapService
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, sitemaps *SitemapService, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, sitemaps: sitemaps, logger: logger}
}

// Start registers the sitemap refresh with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.sitemaps == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.sitemaps.Refresh(ctx); err != nil {
			s.logger.Error("scheduled sitemap refresh failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
