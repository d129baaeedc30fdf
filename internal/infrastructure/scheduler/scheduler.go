// Package scheduler runs periodic background jobs. Each run takes a named
// lock so only one instance executes a job at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/procurement/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrJobLocked     = errors.New("job is running on another instance")
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusIdle    JobStatus = "IDLE"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
	JobStatusSkipped JobStatus = "SKIPPED"
)

// Job is a unit of periodic work
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) error
}

// JobState is a snapshot of a job's last run
type JobState struct {
	Name        string
	Interval    time.Duration
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	Runs        int
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled    bool
	JobTimeout time.Duration
	LockTTL    time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:    true,
		JobTimeout: 10 * time.Minute,
		LockTTL:    15 * time.Minute,
	}
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if c.LockTTL < c.JobTimeout {
		return fmt.Errorf("%w: lock ttl must cover the job timeout", ErrInvalidConfig)
	}
	return nil
}

type entry struct {
	job      Job
	interval time.Duration
	state    JobState
}

// Scheduler runs registered jobs on fixed intervals
type Scheduler struct {
	config SchedulerConfig
	locker cache.JobLocker
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	jobs      map[string]*entry
	order     []string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, locker cache.JobLocker, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		config: config,
		locker: locker,
		logger: logger,
		now:    time.Now,
		jobs:   make(map[string]*entry),
	}
}

// Register adds a job run every interval. Register before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval for %s must be positive", ErrInvalidConfig, job.Name())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.Name()]; !ok {
		s.order = append(s.order, job.Name())
	}
	s.jobs[job.Name()] = &entry{
		job:      job,
		interval: interval,
		state:    JobState{Name: job.Name(), Interval: interval, Status: JobStatusIdle},
	}
	return nil
}

// Start launches one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, name := range s.order {
		e := s.jobs[name]
		s.wg.Add(1)
		go s.loop(ctx, e)
	}

	s.logger.Info("Scheduler started",
		zap.Int("jobs", len(s.order)),
		zap.Duration("job_timeout", s.config.JobTimeout))
	return nil
}

// Stop cancels the loops and waits for running jobs
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow runs the named job immediately, honoring the job lock
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, e)
}

// States returns a snapshot of every job in registration order
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobState, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.jobs[name].state)
	}
	return out
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.run(ctx, e); err != nil && !errors.Is(err, ErrJobLocked) {
				s.logger.Error("Scheduled job failed",
					zap.String("job", e.job.Name()),
					zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) run(ctx context.Context, e *entry) error {
	name := e.job.Name()
	release, ok, err := s.locker.TryLock(ctx, name, s.config.LockTTL)
	if err != nil {
		return fmt.Errorf("lock %s: %w", name, err)
	}
	if !ok {
		s.setState(e, func(st *JobState) { st.Status = JobStatusSkipped })
		s.logger.Debug("Job held by another instance", zap.String("job", name))
		return ErrJobLocked
	}
	defer release()

	started := s.now()
	s.setState(e, func(st *JobState) {
		st.Status = JobStatusRunning
		st.StartedAt = &started
		st.Error = ""
	})

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	runErr := e.job.Run(jobCtx, started)

	finished := s.now()
	s.setState(e, func(st *JobState) {
		st.CompletedAt = &finished
		st.Runs++
		if runErr != nil {
			st.Status = JobStatusFailed
			st.Error = runErr.Error()
		} else {
			st.Status = JobStatusSuccess
		}
	})
	if runErr != nil {
		return runErr
	}
	s.logger.Info("Job completed",
		zap.String("job", name),
		zap.Duration("elapsed", finished.Sub(started)))
	return nil
}

func (s *Scheduler) setState(e *entry, update func(*JobState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&e.state)
}
