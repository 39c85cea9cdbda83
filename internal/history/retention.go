package history

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// RetentionCleaner periodically deletes snapshots older than the retention
// period.
type RetentionCleaner struct {
	store         *Store
	retentionDays int
	scheduler     *gocron.Scheduler
	stopOnce      sync.Once
}

// NewRetentionCleaner runs one cleanup and schedules the rest hourly.
// Returns nil when retentionDays <= 0.
func NewRetentionCleaner(store *Store, retentionDays int) *RetentionCleaner {
	if retentionDays <= 0 {
		return nil
	}

	rc := &RetentionCleaner{
		store:         store,
		retentionDays: retentionDays,
		scheduler:     gocron.NewScheduler(time.UTC),
	}

	rc.cleanup()

	if _, err := rc.scheduler.Every(time.Hour).WaitForSchedule().Do(rc.cleanup); err != nil {
		log.Printf("history: scheduling retention cleanup: %v", err)
		return rc
	}
	rc.scheduler.StartAsync()

	return rc
}

func (rc *RetentionCleaner) cleanup() {
	cutoff := time.Now().Add(-time.Duration(rc.retentionDays) * 24 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := rc.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		log.Printf("history: retention cleanup error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("history: retention cleanup deleted %d snapshots older than %d days", n, rc.retentionDays)
	}
}

// Stop stops the schedule. Safe to call twice and on a nil cleaner.
func (rc *RetentionCleaner) Stop() {
	if rc == nil {
		return
	}
	rc.stopOnce.Do(func() {
		rc.scheduler.Stop()
	})
}
