package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/monitor"
	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// MonitoringService feeds the dashboard. Sample runs from the scheduler every
// few seconds; Metrics and History serve the polling console.
type MonitoringService interface {
	Sample(ctx context.Context) error
	Metrics(ctx context.Context) (*MonitoringMetrics, error)
	History(ctx context.Context, window time.Duration) ([]repository.MonitoringSample, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// MonitoringMetrics is the dashboard header payload.
type MonitoringMetrics struct {
	TakenAt              int64   `json:"taken_at"`
	ActiveSessions       int64   `json:"active_sessions"`
	TotalUsers           int64   `json:"total_users"`
	ActiveUsers          int64   `json:"active_users"`
	ActiveDisconnections int64   `json:"active_disconnections"`
	RxBytesPerSec        int64   `json:"rx_bytes_per_sec"`
	TxBytesPerSec        int64   `json:"tx_bytes_per_sec"`
	CPUPercent           float64 `json:"cpu_percent"`
	MemPercent           float64 `json:"mem_percent"`
	NASReachable         bool    `json:"nas_reachable"`

	RecentActivity []ActivityEvent `json:"recent_activity"`
}

type monitoringService struct {
	collector *monitor.Collector
	ring      *monitor.Ring
	samples   repository.MonitoringSampleRepository
	sessions  repository.SessionRepository
	users     repository.UserRepository
	logs      repository.DisconnectionLogRepository
	activity  *ActivityFeed
}

// NewMonitoringService assembles the dashboard flows. The activity feed may
// be nil.
func NewMonitoringService(
	collector *monitor.Collector,
	ring *monitor.Ring,
	samples repository.MonitoringSampleRepository,
	sessions repository.SessionRepository,
	users repository.UserRepository,
	logs repository.DisconnectionLogRepository,
	activity *ActivityFeed,
) MonitoringService {
	return &monitoringService{
		collector: collector,
		ring:      ring,
		samples:   samples,
		sessions:  sessions,
		users:     users,
		logs:      logs,
		activity:  activity,
	}
}

// Sample takes one reading, keeps it in the in-memory ring for the live view
// and persists it for history queries.
func (s *monitoringService) Sample(ctx context.Context) error {
	if s == nil || s.collector == nil {
		return fmt.Errorf("monitoring service not configured")
	}
	snap := s.collector.Collect(ctx)
	s.ring.Push(snap)

	active, err := s.sessions.CountActive(ctx)
	if err != nil {
		return err
	}
	return s.samples.InsertBatch(ctx, []repository.MonitoringSample{{
		TakenAt:        snap.TakenAt.Unix(),
		ActiveSessions: active,
		RxBytesPerSec:  snap.RxBytesPerSec,
		TxBytesPerSec:  snap.TxBytesPerSec,
		CPUPercent:     snap.CPUPercent,
		MemPercent:     snap.MemPercent,
		NASReachable:   snap.NASReachable,
	}})
}

func (s *monitoringService) Metrics(ctx context.Context) (*MonitoringMetrics, error) {
	metrics := &MonitoringMetrics{}

	if snap, ok := s.ring.Latest(); ok {
		metrics.TakenAt = snap.TakenAt.Unix()
		metrics.RxBytesPerSec = snap.RxBytesPerSec
		metrics.TxBytesPerSec = snap.TxBytesPerSec
		metrics.CPUPercent = snap.CPUPercent
		metrics.MemPercent = snap.MemPercent
		metrics.NASReachable = snap.NASReachable
	}

	active, err := s.sessions.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ActiveSessions = active

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	metrics.TotalUsers = total

	activeUsers, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ActiveUsers = activeUsers

	stats, err := s.logs.Stats(ctx, 0)
	if err != nil {
		return nil, err
	}
	metrics.ActiveDisconnections = stats.Active
	metrics.RecentActivity = s.activity.Recent(ctx)

	return metrics, nil
}

func (s *monitoringService) History(ctx context.Context, window time.Duration) ([]repository.MonitoringSample, error) {
	if window <= 0 {
		window = time.Hour
	}
	return s.samples.ListSince(ctx, time.Now().Add(-window).Unix())
}

func (s *monitoringService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return s.samples.DeleteBefore(ctx, time.Now().Add(-retention).Unix())
}
