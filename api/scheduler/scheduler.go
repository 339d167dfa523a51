package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single archive run
const jobTimeout = 5 * time.Minute

// Archiver archives items that have not changed since cutoff
type Archiver interface {
	ArchiveStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs the periodic stale item archive job. The job is a single
// conditional bulk update, so overlapping runs on several instances are harmless.
type Scheduler struct {
	cron     *cron.Cron
	Archiver Archiver
	MaxAge   time.Duration

	now func() time.Time
}

// New creates a scheduler archiving items older than staleDays on the cron spec
func New(archiver Archiver, spec string, staleDays int) (*Scheduler, error) {
	if staleDays < 1 {
		return nil, fmt.Errorf("STALE_ITEM_DAYS must be positive, got %d", staleDays)
	}
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		Archiver: archiver,
		MaxAge:   time.Duration(staleDays) * 24 * time.Hour,
		now:      time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.archiveStale); err != nil {
		return nil, fmt.Errorf("invalid STALE_ITEM_CRON %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	zap.S().Infow("stale item scheduler started", "max_age", s.MaxAge)
}

// Stop gracefully stops the scheduler, waiting for a running job
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("stale item scheduler stopped")
}

// Next returns the time of the next run
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) archiveStale() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cutoff := s.now().UTC().Add(-s.MaxAge)
	n, err := s.Archiver.ArchiveStale(ctx, cutoff)
	if err != nil {
		zap.S().With(err).Error("failed to archive stale items")
		return
	}
	zap.S().Infow("archived stale items", "count", n, "cutoff", cutoff)
}
