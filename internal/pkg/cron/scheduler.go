package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrUnknownJob is returned by Trigger for a tag that was never registered
var ErrUnknownJob = errors.New("cron: unknown job")

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error

	// RetryDelay is the first delay before re-running a failed job; it doubles
	// up to Interval. Zero means failed runs wait for the next tick.
	RetryDelay time.Duration

	trigger chan struct{}
}

// Scheduler manages scheduled jobs.
// A job never runs concurrently with itself: ticks, retries and Trigger
// requests are all served by the job's own goroutine.
type Scheduler struct {
	jobs    []*Job
	byName  map[string]*Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]*Job, 0),
		byName: make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.AddRetryingJob(name, interval, 0, fn)
}

// AddRetryingJob adds a job that is re-run with backoff after a failure
func (s *Scheduler) AddRetryingJob(name string, interval, retryDelay time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &Job{
		Name:       name,
		Interval:   interval,
		Fn:         fn,
		RetryDelay: retryDelay,
		trigger:    make(chan struct{}, 1),
	}
	s.jobs = append(s.jobs, job)
	s.byName[name] = job
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Trigger asks for an immediate run of the named job.
// Requests made while a run is pending are coalesced into one.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	job, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownJob
	}

	select {
	case job.trigger <- struct{}{}:
	default:
	}
	return nil
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	var (
		retry      <-chan time.Time
		retryDelay time.Duration
	)

	run := func() {
		if err := s.executeJob(job); err != nil && job.RetryDelay > 0 {
			if retryDelay == 0 {
				retryDelay = job.RetryDelay
			} else {
				retryDelay *= 2
			}
			if retryDelay > job.Interval {
				retryDelay = job.Interval
			}
			slog.Warn("Cron job will retry", "name", job.Name, "delay", retryDelay)
			retry = time.After(retryDelay)
			return
		}
		retry = nil
		retryDelay = 0
	}

	// Run immediately on start
	run()

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			run()
		case <-job.trigger:
			run()
		case <-retry:
			run()
		}
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job *Job) error {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	err := job.Fn(s.ctx)
	if err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
	return err
}

// RunOnce runs all jobs once (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
		}
	}
}
