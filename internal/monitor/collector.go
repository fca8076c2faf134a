package monitor

import (
	"context"
	"time"

	"github.com/go-ping/ping"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// SystemStatFetcher groups the gopsutil calls so tests can inject fakes.
type SystemStatFetcher struct {
	CPUPercent    func(interval time.Duration, percpu bool) ([]float64, error)
	VirtualMemory func() (*mem.VirtualMemoryStat, error)
	NetIOCounters func(pernic bool) ([]net.IOCountersStat, error)
	PingHost      func(ctx context.Context, host string, timeout time.Duration) bool
}

// Snapshot is one gateway health reading.
type Snapshot struct {
	TakenAt       time.Time
	CPUPercent    float64
	MemPercent    float64
	RxBytesPerSec int64
	TxBytesPerSec int64
	NASReachable  bool
}

// Collector samples host statistics and NAS reachability. Rates are derived
// from the delta between consecutive calls, so the first Collect reports zero
// throughput.
type Collector struct {
	fetcher     SystemStatFetcher
	nasHost     string
	pingTimeout time.Duration
	iface       string

	lastNetStat []net.IOCountersStat
	lastTime    time.Time
}

// Options configure the collector.
type Options struct {
	NASHost     string
	PingTimeout time.Duration
	Interface   string
}

// New builds a collector with the real gopsutil and go-ping fetchers.
func New(opts Options) *Collector {
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Collector{
		fetcher: SystemStatFetcher{
			CPUPercent:    cpu.Percent,
			VirtualMemory: mem.VirtualMemory,
			NetIOCounters: net.IOCounters,
			PingHost:      pingHost,
		},
		nasHost:     opts.NASHost,
		pingTimeout: timeout,
		iface:       opts.Interface,
		lastTime:    time.Now(),
	}
}

// SetFetcher sets a custom fetcher for testing.
func (c *Collector) SetFetcher(fetcher SystemStatFetcher) {
	c.fetcher = fetcher
}

// Collect returns the current snapshot.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	snap := Snapshot{TakenAt: time.Now()}

	if percents, err := c.fetcher.CPUPercent(0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	if v, err := c.fetcher.VirtualMemory(); err == nil {
		snap.MemPercent = v.UsedPercent
	}

	now := snap.TakenAt
	if counters, err := c.fetcher.NetIOCounters(c.iface != ""); err == nil && len(counters) > 0 {
		current := c.pickInterface(counters)
		if len(c.lastNetStat) > 0 {
			last := c.pickInterface(c.lastNetStat)
			duration := now.Sub(c.lastTime).Seconds()
			if duration > 0 {
				snap.RxBytesPerSec = int64(float64(current.BytesRecv-last.BytesRecv) / duration)
				snap.TxBytesPerSec = int64(float64(current.BytesSent-last.BytesSent) / duration)
			}
		}
		c.lastNetStat = counters
	}
	c.lastTime = now

	if c.nasHost != "" && c.fetcher.PingHost != nil {
		snap.NASReachable = c.fetcher.PingHost(ctx, c.nasHost, c.pingTimeout)
	}

	return snap
}

func (c *Collector) pickInterface(counters []net.IOCountersStat) net.IOCountersStat {
	if c.iface != "" {
		for _, stat := range counters {
			if stat.Name == c.iface {
				return stat
			}
		}
	}
	return counters[0]
}

func pingHost(ctx context.Context, host string, timeout time.Duration) bool {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return false
	}
	// Unprivileged UDP ping works without CAP_NET_RAW.
	pinger.SetPrivileged(false)
	pinger.Count = 1
	pinger.Timeout = timeout

	done := make(chan error, 1)
	go func() { done <- pinger.Run() }()
	select {
	case <-ctx.Done():
		pinger.Stop()
		return false
	case err := <-done:
		if err != nil {
			return false
		}
	}
	return pinger.Statistics().PacketsRecv > 0
}
