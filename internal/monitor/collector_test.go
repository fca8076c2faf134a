package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
)

func fakeFetcher(rx, tx uint64, reachable bool) SystemStatFetcher {
	return SystemStatFetcher{
		CPUPercent: func(time.Duration, bool) ([]float64, error) {
			return []float64{42.5}, nil
		},
		VirtualMemory: func() (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{UsedPercent: 61.2}, nil
		},
		NetIOCounters: func(bool) ([]net.IOCountersStat, error) {
			return []net.IOCountersStat{{Name: "eth0", BytesRecv: rx, BytesSent: tx}}, nil
		},
		PingHost: func(context.Context, string, time.Duration) bool {
			return reachable
		},
	}
}

func TestCollectorFirstSampleHasNoRates(t *testing.T) {
	c := New(Options{NASHost: "10.0.0.1"})
	c.SetFetcher(fakeFetcher(1000, 500, true))

	snap := c.Collect(context.Background())
	assert.Equal(t, 42.5, snap.CPUPercent)
	assert.Equal(t, 61.2, snap.MemPercent)
	assert.True(t, snap.NASReachable)
	// No previous counters to diff against yet.
	assert.Zero(t, snap.RxBytesPerSec)
	assert.Zero(t, snap.TxBytesPerSec)
}

func TestCollectorDeltaRates(t *testing.T) {
	c := New(Options{NASHost: "10.0.0.1"})
	c.SetFetcher(fakeFetcher(1000, 500, true))
	c.Collect(context.Background())

	time.Sleep(50 * time.Millisecond)
	c.SetFetcher(fakeFetcher(101000, 50500, true))
	snap := c.Collect(context.Background())

	assert.Positive(t, snap.RxBytesPerSec)
	assert.Positive(t, snap.TxBytesPerSec)
	assert.Greater(t, snap.RxBytesPerSec, snap.TxBytesPerSec)
}

func TestCollectorNASUnreachable(t *testing.T) {
	c := New(Options{NASHost: "10.0.0.1"})
	c.SetFetcher(fakeFetcher(0, 0, false))

	snap := c.Collect(context.Background())
	assert.False(t, snap.NASReachable)
}

func TestCollectorNoNASHostConfigured(t *testing.T) {
	c := New(Options{})
	c.SetFetcher(fakeFetcher(0, 0, true))

	snap := c.Collect(context.Background())
	assert.False(t, snap.NASReachable)
}
