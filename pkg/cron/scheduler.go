// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrUnknownJob = errors.New("unknown job")

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

type entry struct {
	job Job
	id  cron.EntryID
}

// Scheduler manages background scheduled jobs using robfig/cron.
// A run that is still going when its next tick arrives is skipped.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]entry
	timeout time.Duration
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewScheduler creates a scheduler. Each run gets a context bounded by timeout;
// zero means no bound.
func NewScheduler(timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))

	// Standard 5-field specs plus descriptors such as "@every 5m".
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:    c,
		jobs:    make(map[string]entry),
		timeout: timeout,
		logger:  logger,
	}
}

// Add registers job under name on the given schedule.
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", name, err)
	}
	s.jobs[name] = entry{job: job, id: id}
	return nil
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow runs the named job synchronously, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.execute(ctx, name, e.job)
}

// Next returns the next scheduled run of the named job. It is zero until the
// scheduler has started.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(e.id).Next, true
}

func (s *Scheduler) run(name string, job Job) {
	_ = s.execute(context.Background(), name, job)
}

func (s *Scheduler) execute(ctx context.Context, name string, job Job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Debug("job started", slog.String("job", name))
	if err := job(ctx); err != nil {
		s.logger.Error("job failed",
			slog.String("job", name),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return err
	}
	s.logger.Info("job completed",
		slog.String("job", name),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
