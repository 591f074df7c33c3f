package sysinfo

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/user"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"

	"github.com/vbonduro/everything/internal/domain"
)

type Process struct {
	PID           int       `json:"pid"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	Created       time.Time `json:"created"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	Command       []string  `json:"command"`
	Username      string    `json:"username"`
	NumThreads    int       `json:"num_threads"`
	Memory        struct {
		RSS uint64 `json:"rss"`
		VMS uint64 `json:"vms"`
	} `json:"memory_info"`
	NumFDs int `json:"num_fds"`
	Nice   int `json:"nice"`
}

var processStates = map[string]string{
	"R": "running",
	"S": "sleeping",
	"D": "disk-sleep",
	"Z": "zombie",
	"T": "stopped",
	"t": "tracing-stop",
	"X": "dead",
	"I": "idle",
}

type ListOptions struct {
	SortBy  string
	Limit   int
	Pattern string
}

// Processes lists running processes. cpu and memory sort descending, pid and
// name ascending; an unknown SortBy sorts by cpu.
func (r *Reader) Processes(opts ListOptions) ([]*Process, error) {
	procs, err := r.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	total := r.memTotal()
	pattern := strings.ToLower(opts.Pattern)

	out := []*Process{}
	for _, p := range procs {
		info, err := r.describe(p, total)
		if err != nil {
			// Exited between listing and reading.
			continue
		}
		if pattern != "" && !strings.Contains(strings.ToLower(info.Name), pattern) {
			continue
		}
		out = append(out, info)
	}

	slices.SortStableFunc(out, processOrder(opts.SortBy))
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func processOrder(sortBy string) func(a, b *Process) int {
	switch sortBy {
	case "memory":
		return func(a, b *Process) int { return cmp.Compare(b.MemoryPercent, a.MemoryPercent) }
	case "pid":
		return func(a, b *Process) int { return cmp.Compare(a.PID, b.PID) }
	case "name":
		return func(a, b *Process) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	default:
		return func(a, b *Process) int { return cmp.Compare(b.CPUPercent, a.CPUPercent) }
	}
}

func (r *Reader) Process(pid int) (*Process, error) {
	p, err := r.fs.Proc(pid)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound("process", int64(pid))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	info, err := r.describe(p, r.memTotal())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound("process", int64(pid))
	}
	if errors.Is(err, fs.ErrPermission) {
		return nil, fmt.Errorf("process %d: %w", pid, ErrForbidden)
	}
	return info, err
}

func (r *Reader) memTotal() uint64 {
	mi, err := r.fs.Meminfo()
	if err != nil || mi.MemTotal == nil {
		return 0
	}
	return *mi.MemTotal * 1024
}

func (r *Reader) describe(p procfs.Proc, memTotal uint64) (*Process, error) {
	stat, err := p.Stat()
	if err != nil {
		return nil, err
	}

	info := &Process{
		PID:        p.PID,
		Name:       stat.Comm,
		Status:     cmp.Or(processStates[stat.State], stat.State),
		NumThreads: stat.NumThreads,
		Nice:       stat.Nice,
	}
	info.Memory.RSS = uint64(stat.ResidentMemory())
	info.Memory.VMS = uint64(stat.VirtualMemory())
	if memTotal > 0 {
		info.MemoryPercent = round1(float64(info.Memory.RSS) / float64(memTotal) * 100)
	}

	if start, err := stat.StartTime(); err == nil {
		created := time.Unix(0, int64(start*float64(time.Second)))
		info.Created = created.UTC()
		if elapsed := time.Since(created).Seconds(); elapsed > 0 {
			info.CPUPercent = round1(stat.CPUTime() / elapsed * 100)
		}
	}

	info.Command, _ = p.CmdLine()
	if info.Command == nil {
		info.Command = []string{}
	}
	info.NumFDs, _ = p.FileDescriptorsLen()
	info.Username = owner(p.PID)
	return info, nil
}

func owner(pid int) string {
	var st unix.Stat_t
	if err := unix.Stat("/proc/"+strconv.Itoa(pid), &st); err != nil {
		return ""
	}
	uid := strconv.FormatUint(uint64(st.Uid), 10)
	if u, err := user.LookupId(uid); err == nil {
		return u.Username
	}
	return uid
}

// Kill signals pid with SIGTERM, or SIGKILL when force is set. PID 1 and the
// server itself are refused.
func Kill(pid int, force bool) (string, error) {
	if pid <= 1 || pid == os.Getpid() {
		return "", fmt.Errorf("cannot terminate process %d: %w", pid, ErrForbidden)
	}
	sig, verb := unix.SIGTERM, "terminated"
	if force {
		sig, verb = unix.SIGKILL, "killed"
	}

	err := unix.Kill(pid, sig)
	switch {
	case errors.Is(err, unix.ESRCH):
		return "", domain.NotFound("process", int64(pid))
	case errors.Is(err, unix.EPERM):
		return "", fmt.Errorf("process %d: %w", pid, ErrForbidden)
	case err != nil:
		return "", fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return fmt.Sprintf("Process %d %s successfully", pid, verb), nil
}

type RunResult struct {
	Command    string `json:"command"`
	ReturnCode int    `json:"return_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	Successful bool   `json:"successful"`
}

// Run executes command, split on whitespace, without a shell. A zero timeout
// means no deadline beyond ctx.
func Run(ctx context.Context, command, cwd string, timeout time.Duration) (*RunResult, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, domain.Invalid("command", "must not be empty")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = cwd
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, ErrTimeout
	}

	res := &RunResult{Command: command, Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ReturnCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.ReturnCode = -int(ws.Signal())
		}
	case err != nil:
		return nil, fmt.Errorf("failed to run %q: %w", args[0], err)
	}
	res.Successful = res.ReturnCode == 0
	return res, nil
}
