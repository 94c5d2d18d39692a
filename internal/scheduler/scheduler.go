package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/db"
	"github.com/perchlabs/perch/internal/monitor"
	"github.com/perchlabs/perch/pkg/logging"
)

// Scheduler drives the periodic batch ingestion and the daily
// retention sweep. The ingestion cadence comes from the schedule
// record and can be reloaded while running.
type Scheduler struct {
	cron          *cron.Cron
	service       *monitor.Service
	schedules     *db.ScheduleRepository
	retentionDays int
	logger        *zap.Logger

	mu          sync.Mutex
	ingestEntry cron.EntryID
	hasIngest   bool
}

// New creates a new scheduler
func New(service *monitor.Service, schedules *db.ScheduleRepository, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		service:       service,
		schedules:     schedules,
		retentionDays: retentionDays,
		logger:        logging.WithComponent("scheduler"),
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	// Daily retention sweep at 03:00
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		s.logger.Info("Running retention sweep")
		if _, err := s.service.Purge(context.Background(), s.retentionDays); err != nil {
			s.logger.Error("Retention sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	if err := s.Reload(ctx); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("retention_days", s.retentionDays))
	return nil
}

// Reload re-reads the schedule record and reschedules the periodic
// batch ingestion to match it
func (s *Scheduler) Reload(ctx context.Context) error {
	schedule, err := s.schedules.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schedule: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasIngest {
		s.cron.Remove(s.ingestEntry)
		s.hasIngest = false
	}

	if !schedule.Enabled {
		s.logger.Info("Periodic ingestion disabled")
		return nil
	}

	spec := fmt.Sprintf("@every %dm", schedule.IntervalMinutes)
	entry, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("Running scheduled batch ingestion")
		s.service.IngestAll(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule batch ingestion: %w", err)
	}
	s.ingestEntry = entry
	s.hasIngest = true

	s.logger.Info("Periodic ingestion scheduled",
		zap.Int("interval_minutes", schedule.IntervalMinutes))
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn("Timed out waiting for running jobs")
	}
	s.logger.Info("Scheduler stopped")
}
