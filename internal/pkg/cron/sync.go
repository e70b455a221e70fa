package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/service/dispatcher"
)

const JobDeferredSync = "deferred_sync"

type Syncer interface {
	Sync(ctx context.Context) (dispatcher.Outcome, error)
}

// SyncJobs flushes the offline queue on the trainer's device
type SyncJobs struct {
	syncer     Syncer
	interval   time.Duration
	retryDelay time.Duration
	scheduler  *Scheduler
}

func NewSyncJobs(syncer Syncer, interval, retryDelay time.Duration) *SyncJobs {
	return &SyncJobs{
		syncer:     syncer,
		interval:   interval,
		retryDelay: retryDelay,
	}
}

func (j *SyncJobs) RegisterJobs(scheduler *Scheduler) {
	j.scheduler = scheduler
	scheduler.AddRetryingJob(JobDeferredSync, j.interval, j.retryDelay, j.Flush)
}

// Flush runs one sync pass. Transport failures are returned so the
// scheduler retries with backoff; a pass that made progress but left
// actions behind asks for another run right away.
func (j *SyncJobs) Flush(ctx context.Context) error {
	out, err := j.syncer.Sync(ctx)
	if err != nil {
		return err
	}

	slog.Debug("Cron: Deferred sync pass finished",
		"outcome", out.Kind,
		"processed", len(out.Processed),
		"expired", len(out.Expired),
		"remaining", out.Remaining)

	if out.Kind == dispatcher.OutcomeSynced && len(out.Processed) > 0 && out.Remaining > 0 && j.scheduler != nil {
		return j.scheduler.Trigger(JobDeferredSync)
	}
	return nil
}
