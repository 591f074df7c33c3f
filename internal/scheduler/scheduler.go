// Package scheduler runs background jobs on fixed intervals. Only one process
// per lock file runs jobs at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/metrics"
)

const tickInterval = time.Second

// ErrLocked is returned by Start when another process holds the lock file.
var ErrLocked = errors.New("scheduler lock held by another process")

type Job struct {
	ID       string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Task is the externally visible state of a job.
type Task struct {
	ID              string     `json:"id"`
	IntervalSeconds int        `json:"interval_seconds"`
	NextRunTime     *time.Time `json:"next_run_time"`
	Paused          bool       `json:"paused"`
	LastRun         *time.Time `json:"last_run,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

type jobState struct {
	job       Job
	nextRun   time.Time
	paused    bool
	lastRun   time.Time
	lastError string
}

type Scheduler struct {
	mu   sync.Mutex
	jobs []*jobState

	lock   *flock.Flock
	now    func() time.Time
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a scheduler guarded by lockPath. An empty lockPath disables the
// single-instance check.
func New(lockPath string, logger *slog.Logger) *Scheduler {
	s := &Scheduler{now: time.Now, logger: logger}
	if lockPath != "" {
		s.lock = flock.New(lockPath)
	}
	return s
}

// Add registers job. Its first run is one interval from now.
func (s *Scheduler) Add(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &jobState{job: job, nextRun: s.now().Add(job.Interval)})
}

func (s *Scheduler) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]Task, 0, len(s.jobs))
	for _, js := range s.jobs {
		t := Task{
			ID:              js.job.ID,
			IntervalSeconds: int(js.job.Interval / time.Second),
			Paused:          js.paused,
			LastError:       js.lastError,
		}
		if !js.paused {
			next := js.nextRun.UTC()
			t.NextRunTime = &next
		}
		if !js.lastRun.IsZero() {
			last := js.lastRun.UTC()
			t.LastRun = &last
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// Enable resumes a paused job; its next run is one interval from now.
func (s *Scheduler) Enable(id string) (Task, error) {
	return s.setPaused(id, false)
}

// Disable pauses a job until Enable is called.
func (s *Scheduler) Disable(id string) (Task, error) {
	return s.setPaused(id, true)
}

func (s *Scheduler) setPaused(id string, paused bool) (Task, error) {
	s.mu.Lock()
	var found bool
	for _, js := range s.jobs {
		if js.job.ID != id {
			continue
		}
		found = true
		if js.paused && !paused {
			js.nextRun = s.now().Add(js.job.Interval)
		}
		js.paused = paused
	}
	s.mu.Unlock()

	if !found {
		return Task{}, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}
	s.logger.Info("scheduler task updated", "task", id, "paused", paused)
	for _, t := range s.Tasks() {
		if t.ID == id {
			return t, nil
		}
	}
	return Task{}, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
}

// RunDue runs every unpaused job whose next run time has passed. Jobs run
// one after another outside the state lock.
func (s *Scheduler) RunDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []*jobState
	for _, js := range s.jobs {
		if !js.paused && !now.Before(js.nextRun) {
			js.nextRun = now.Add(js.job.Interval)
			due = append(due, js)
		}
	}
	s.mu.Unlock()

	for _, js := range due {
		err := s.run(ctx, js.job)

		s.mu.Lock()
		js.lastRun = now
		js.lastError = ""
		if err != nil {
			js.lastError = err.Error()
		}
		s.mu.Unlock()
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
		metrics.SchedulerRuns.WithLabelValues(job.ID, metrics.Result(err)).Inc()
		if err != nil {
			s.logger.Error("scheduler job failed", "task", job.ID, "error", err)
			return
		}
		s.logger.Debug("scheduler job complete", "task", job.ID, "duration_ms", time.Since(start).Milliseconds())
	}()
	return job.Run(ctx)
}

// Start takes the lock file and begins polling for due jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.lock != nil {
		ok, err := s.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire scheduler lock: %w", err)
		}
		if !ok {
			return ErrLocked
		}
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx)

	s.logger.Info("scheduler started", "jobs", len(s.Tasks()))
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunDue(ctx)
		}
	}
}

// Stop ends the polling loop and releases the lock file.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release scheduler lock", "error", err)
		}
	}
	s.logger.Info("scheduler stopped")
}
