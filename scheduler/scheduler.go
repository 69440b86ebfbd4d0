// Package scheduler wires up the cron job that periodically runs a full
// scan cycle across all configured marketplace adapters.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"wildguard/models"
	"wildguard/scraper"
	"wildguard/services"
	"wildguard/storage"
	"wildguard/utils"
)

// Scheduler wraps robfig/cron and manages the scan loop.
type Scheduler struct {
	cron     *cron.Cron
	adapters []scraper.Adapter
	pipeline *services.Pipeline
	audit    storage.RawListingWriter // nil disables the CSV audit trail
	keywords []string
	logger   *utils.Logger
	spec     string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(adapters []scraper.Adapter, pipeline *services.Pipeline,
	audit storage.RawListingWriter, keywords []string,
	intervalHours int, logger *utils.Logger) *Scheduler {

	return &Scheduler{
		cron:     cron.New(),
		adapters: adapters,
		pipeline: pipeline,
		audit:    audit,
		keywords: keywords,
		logger:   logger,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one scan
// immediately so results exist without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.RunCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("[scheduler] Cron stopped")
}

// RunCycle fetches from every adapter and pushes the merged listings
// through the analysis pipeline. Adapter failures are logged and the
// cycle continues with whatever the other adapters returned.
func (s *Scheduler) RunCycle(ctx context.Context) *models.ScanReport {
	s.logger.Info("[scheduler] Scan cycle started — %d adapter(s), %d keyword(s)",
		len(s.adapters), len(s.keywords))

	var listings []*models.RawListing
	for _, adapter := range s.adapters {
		batch, err := adapter.Fetch(ctx, s.keywords)
		if err != nil {
			s.logger.Error("[scheduler] %s fetch error: %v — continuing", adapter.Platform(), err)
		}
		listings = append(listings, batch...)
	}

	if len(listings) == 0 {
		s.logger.Warn("[scheduler] No listings fetched — nothing to analyze")
		return nil
	}

	if s.audit != nil {
		if err := s.audit.WriteRaw(listings); err != nil {
			s.logger.Error("[scheduler] CSV audit write failed: %v", err)
		}
	}

	report := s.pipeline.Run(ctx, listings)
	services.PrintReport(report)

	s.logger.Info("[scheduler] Scan cycle complete")
	return report
}
