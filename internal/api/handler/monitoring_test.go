package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

type stubMonitoring struct {
	gotWindow time.Duration
}

func (s *stubMonitoring) Sample(_ context.Context) error { return nil }

func (s *stubMonitoring) Metrics(_ context.Context) (*service.MonitoringMetrics, error) {
	return &service.MonitoringMetrics{}, nil
}

func (s *stubMonitoring) History(_ context.Context, window time.Duration) ([]repository.MonitoringSample, error) {
	s.gotWindow = window
	return nil, nil
}

func (s *stubMonitoring) Prune(_ context.Context, _ time.Duration) (int64, error) { return 0, nil }

func TestMonitoringHistoryMinutesParam(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantWindow time.Duration
	}{
		{name: "default one hour", query: "", wantStatus: http.StatusOK, wantWindow: time.Hour},
		{name: "explicit minutes", query: "?minutes=30", wantStatus: http.StatusOK, wantWindow: 30 * time.Minute},
		{name: "zero rejected", query: "?minutes=0", wantStatus: http.StatusBadRequest},
		{name: "negative rejected", query: "?minutes=-5", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?minutes=1h", wantStatus: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubMonitoring{}
			h := NewMonitoringHandler(stub)

			req := httptest.NewRequest(http.MethodGet, "/api/core/monitoring/history"+tc.query, nil)
			rec := httptest.NewRecorder()
			h.History(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, tc.wantWindow, stub.gotWindow)
			}
		})
	}
}
