package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// AuditPurger deletes audit events older than a cutoff.
type AuditPurger interface {
	PurgeOlderThan(cutoff time.Time) (int64, error)
}

// AuditCleanupScheduler periodically purges audit events past the
// retention window.
type AuditCleanupScheduler struct {
	purger        AuditPurger
	retentionDays int
	schedule      string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a scheduler instance.
func NewAuditCleanupScheduler(purger AuditPurger, retentionDays int, schedule string) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		purger:        purger,
		retentionDays: retentionDays,
		schedule:      schedule,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.retentionDays <= 0 {
		log.Printf("Audit cleanup scheduler: retention disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runCleanup); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Audit cleanup scheduler: started with schedule '%s', retention %d days", s.schedule, s.retentionDays)

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Audit cleanup scheduler: stopped")
}

func (s *AuditCleanupScheduler) runCleanup() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	removed, err := s.purger.PurgeOlderThan(cutoff)
	if err != nil {
		log.Printf("Audit cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Audit cleanup removed %d events older than %s", removed, cutoff.Format(time.RFC3339))
	}
}
