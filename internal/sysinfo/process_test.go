package sysinfo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
)

func newTestReader(t *testing.T) *Reader {
	t.Helper()
	r, err := NewReader()
	require.NoError(t, err)
	return r
}

func TestProcessesIncludesSelf(t *testing.T) {
	r := newTestReader(t)

	procs, err := r.Processes(ListOptions{SortBy: "pid"})
	require.NoError(t, err)
	require.NotEmpty(t, procs)

	var found bool
	for i, p := range procs {
		if i > 0 {
			assert.Less(t, procs[i-1].PID, p.PID)
		}
		if p.PID == os.Getpid() {
			found = true
		}
	}
	assert.True(t, found)
}

func TestProcessesLimitAndPattern(t *testing.T) {
	r := newTestReader(t)

	procs, err := r.Processes(ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, procs, 1)

	procs, err = r.Processes(ListOptions{Pattern: "no-such-process-name-xyz"})
	require.NoError(t, err)
	assert.Empty(t, procs)
}

func TestProcessLookup(t *testing.T) {
	r := newTestReader(t)

	p, err := r.Process(os.Getpid())
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), p.PID)
	assert.NotEmpty(t, p.Name)
	assert.Positive(t, p.NumThreads)

	_, err = r.Process(999999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKillRefusesProtectedPIDs(t *testing.T) {
	_, err := Kill(1, false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = Kill(os.Getpid(), true)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = Kill(999999999, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRun(t *testing.T) {
	res, err := Run(context.Background(), "echo hello world", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", res.Stdout)
	assert.True(t, res.Successful)
	assert.Equal(t, 0, res.ReturnCode)

	res, err = Run(context.Background(), "false", "", 0)
	require.NoError(t, err)
	assert.False(t, res.Successful)
	assert.Equal(t, 1, res.ReturnCode)

	res, err = Run(context.Background(), "pwd", t.TempDir(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Stdout)
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), "   ", "", 0)
	assert.True(t, domain.IsValidation(err))

	_, err = Run(context.Background(), "sleep 5", "", 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestHostInfo(t *testing.T) {
	r := newTestReader(t)

	info, err := r.Info()
	require.NoError(t, err)
	assert.Positive(t, info.CPUCount)
	assert.NotEmpty(t, info.OS.Name)
	assert.NotZero(t, info.Memory.Total)

	_, err = r.Disks()
	require.NoError(t, err)

	_, err = r.Network()
	require.NoError(t, err)
}
