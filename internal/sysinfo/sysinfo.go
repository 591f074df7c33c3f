// Package sysinfo reads host, process and filesystem state for the admin
// endpoints.
package sysinfo

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

var (
	// ErrForbidden is returned for operations the server refuses to perform.
	ErrForbidden = errors.New("operation not permitted")
	// ErrTimeout is returned when a spawned command outlives its deadline.
	ErrTimeout = errors.New("process timed out")
)

type Reader struct {
	fs procfs.FS
}

func NewReader() (*Reader, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs: %w", err)
	}
	return &Reader{fs: fs}, nil
}

type OSInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Architecture string `json:"architecture"`
}

type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	PercentUsed float64 `json:"percent_used"`
	Human       string  `json:"human"`
}

type Info struct {
	OS        OSInfo     `json:"os"`
	GoVersion string     `json:"go_version"`
	Hostname  string     `json:"hostname"`
	BootTime  time.Time  `json:"boot_time"`
	CPUCount  int        `json:"cpu_count"`
	Memory    MemoryInfo `json:"memory"`
}

func (r *Reader) Info() (*Info, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return nil, fmt.Errorf("failed to read uname: %w", err)
	}
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to read hostname: %w", err)
	}
	stat, err := r.fs.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to read /proc/stat: %w", err)
	}
	mem, err := r.memory()
	if err != nil {
		return nil, err
	}

	return &Info{
		OS: OSInfo{
			Name:         unix.ByteSliceToString(uts.Sysname[:]),
			Version:      unix.ByteSliceToString(uts.Release[:]),
			Architecture: unix.ByteSliceToString(uts.Machine[:]),
		},
		GoVersion: runtime.Version(),
		Hostname:  hostname,
		BootTime:  time.Unix(int64(stat.BootTime), 0).UTC(),
		CPUCount:  runtime.NumCPU(),
		Memory:    mem,
	}, nil
}

func (r *Reader) memory() (MemoryInfo, error) {
	mi, err := r.fs.Meminfo()
	if err != nil {
		return MemoryInfo{}, fmt.Errorf("failed to read meminfo: %w", err)
	}
	var m MemoryInfo
	if mi.MemTotal != nil {
		m.Total = *mi.MemTotal * 1024
	}
	if mi.MemAvailable != nil {
		m.Available = *mi.MemAvailable * 1024
	}
	if m.Total > 0 {
		m.PercentUsed = round1(float64(m.Total-m.Available) / float64(m.Total) * 100)
	}
	m.Human = fmt.Sprintf("%s of %s available", humanize.Bytes(m.Available), humanize.Bytes(m.Total))
	return m, nil
}

type Disk struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	Filesystem  string  `json:"filesystem"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	PercentUsed float64 `json:"percent_used"`
	Human       string  `json:"human"`
}

// Disks reports usage for every mounted filesystem that has blocks.
// Pseudo filesystems and unreadable mounts are skipped.
func (r *Reader) Disks() ([]Disk, error) {
	mounts, err := procfs.GetMounts()
	if err != nil {
		return nil, fmt.Errorf("failed to read mounts: %w", err)
	}

	disks := []Disk{}
	seen := map[string]bool{}
	for _, m := range mounts {
		if seen[m.MountPoint] {
			continue
		}
		seen[m.MountPoint] = true

		d, ok := statDisk(m.MountPoint)
		if !ok {
			continue
		}
		d.Device = m.Source
		d.Filesystem = m.FSType
		disks = append(disks, d)
	}
	return disks, nil
}

func statDisk(path string) (Disk, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil || st.Blocks == 0 {
		return Disk{}, false
	}
	bsize := uint64(st.Bsize)
	d := Disk{
		Mountpoint: path,
		Total:      st.Blocks * bsize,
		Free:       st.Bavail * bsize,
	}
	d.Used = (st.Blocks - st.Bfree) * bsize
	if d.Total > 0 {
		d.PercentUsed = round1(float64(d.Used) / float64(d.Total) * 100)
	}
	d.Human = fmt.Sprintf("%s used of %s", humanize.Bytes(d.Used), humanize.Bytes(d.Total))
	return d, true
}

type Interface struct {
	Status      string   `json:"status"`
	MTU         int      `json:"mtu"`
	MAC         string   `json:"mac,omitempty"`
	Addresses   []string `json:"addresses"`
	BytesSent   uint64   `json:"bytes_sent"`
	BytesRecv   uint64   `json:"bytes_recv"`
	PacketsSent uint64   `json:"packets_sent"`
	PacketsRecv uint64   `json:"packets_recv"`
}

// Network returns every interface keyed by name with its traffic counters.
func (r *Reader) Network() (map[string]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	counters, err := r.fs.NetDev()
	if err != nil {
		counters = procfs.NetDev{}
	}

	out := make(map[string]Interface, len(ifaces))
	for _, ifc := range ifaces {
		info := Interface{
			Status:    "down",
			MTU:       ifc.MTU,
			MAC:       ifc.HardwareAddr.String(),
			Addresses: []string{},
		}
		if ifc.Flags&net.FlagUp != 0 {
			info.Status = "up"
		}
		if addrs, err := ifc.Addrs(); err == nil {
			for _, a := range addrs {
				info.Addresses = append(info.Addresses, a.String())
			}
		}
		if line, ok := counters[ifc.Name]; ok {
			info.BytesSent = line.TxBytes
			info.BytesRecv = line.RxBytes
			info.PacketsSent = line.TxPackets
			info.PacketsRecv = line.RxPackets
		}
		out[ifc.Name] = info
	}
	return out, nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
