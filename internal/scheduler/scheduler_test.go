package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestScheduler(t *testing.T) (*Scheduler, *clock) {
	t.Helper()
	c := &clock{t: testNow}
	s := New("", slog.New(slog.DiscardHandler))
	s.now = c.now
	return s, c
}

func countingJob(id string, interval time.Duration, runs *int, err error) Job {
	return Job{ID: id, Interval: interval, Run: func(context.Context) error {
		*runs++
		return err
	}}
}

func TestRunDueRunsOnlyElapsedJobs(t *testing.T) {
	s, c := newTestScheduler(t)
	var fast, slow int
	s.Add(countingJob("fast", time.Minute, &fast, nil))
	s.Add(countingJob("slow", 10*time.Minute, &slow, nil))

	s.RunDue(context.Background())
	assert.Equal(t, 0, fast)

	c.advance(time.Minute)
	s.RunDue(context.Background())
	assert.Equal(t, 1, fast)
	assert.Equal(t, 0, slow)

	c.advance(9 * time.Minute)
	s.RunDue(context.Background())
	assert.Equal(t, 2, fast)
	assert.Equal(t, 1, slow)
}

func TestTasksReportState(t *testing.T) {
	s, c := newTestScheduler(t)
	var runs int
	s.Add(countingJob("upcoming", time.Minute, &runs, errors.New("boom")))

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "upcoming", tasks[0].ID)
	assert.Equal(t, 60, tasks[0].IntervalSeconds)
	require.NotNil(t, tasks[0].NextRunTime)
	assert.Equal(t, testNow.Add(time.Minute), *tasks[0].NextRunTime)
	assert.Nil(t, tasks[0].LastRun)

	c.advance(time.Minute)
	s.RunDue(context.Background())

	tasks = s.Tasks()
	assert.Equal(t, "boom", tasks[0].LastError)
	require.NotNil(t, tasks[0].LastRun)
	assert.Equal(t, testNow.Add(time.Minute), *tasks[0].LastRun)
	assert.Equal(t, testNow.Add(2*time.Minute), *tasks[0].NextRunTime)
}

func TestDisableAndEnable(t *testing.T) {
	s, c := newTestScheduler(t)
	var runs int
	s.Add(countingJob("low_stock", time.Minute, &runs, nil))

	task, err := s.Disable("low_stock")
	require.NoError(t, err)
	assert.True(t, task.Paused)
	assert.Nil(t, task.NextRunTime)

	c.advance(5 * time.Minute)
	s.RunDue(context.Background())
	assert.Equal(t, 0, runs)

	task, err = s.Enable("low_stock")
	require.NoError(t, err)
	assert.False(t, task.Paused)
	require.NotNil(t, task.NextRunTime)
	assert.Equal(t, c.t.Add(time.Minute), *task.NextRunTime)

	c.advance(time.Minute)
	s.RunDue(context.Background())
	assert.Equal(t, 1, runs)
}

func TestUnknownTask(t *testing.T) {
	s, _ := newTestScheduler(t)
	_, err := s.Enable("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Disable("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPanickingJobIsRecorded(t *testing.T) {
	s, c := newTestScheduler(t)
	s.Add(Job{ID: "bad", Interval: time.Second, Run: func(context.Context) error { panic("oops") }})

	c.advance(time.Second)
	s.RunDue(context.Background())
	assert.Contains(t, s.Tasks()[0].LastError, "oops")
}

func TestStartHoldsLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "scheduler.lock")
	logger := slog.New(slog.DiscardHandler)

	first := New(lockPath, logger)
	require.NoError(t, first.Start(context.Background()))

	second := New(lockPath, logger)
	assert.ErrorIs(t, second.Start(context.Background()), ErrLocked)

	first.Stop()
	require.NoError(t, second.Start(context.Background()))
	second.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.Stop()
}
