package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
)

const JobAutoClockout = "auto_clockout"

type ShiftJobs struct {
	autoClockoutSvc shift.AutoClockoutService
	interval        time.Duration
}

func NewShiftJobs(autoClockoutSvc shift.AutoClockoutService, interval time.Duration) *ShiftJobs {
	return &ShiftJobs{
		autoClockoutSvc: autoClockoutSvc,
		interval:        interval,
	}
}

func (j *ShiftJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobAutoClockout, j.interval, j.AutoClockout)
}

// AutoClockout runs the sweep in-process. The sweep decides on its own
// whether the academy is past closing hour, so ticking often is harmless.
func (j *ShiftJobs) AutoClockout(ctx context.Context) error {
	result, err := j.autoClockoutSvc.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("auto-clockout sweep: %w", err)
	}

	slog.Info("Cron: Auto-clockout sweep finished",
		"action", result.Action,
		"ended", result.Ended,
		"reason", result.Reason)
	return nil
}
