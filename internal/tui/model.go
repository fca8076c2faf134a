// Package tui is an interactive terminal dashboard for the portal. It polls
// the same services the HTTP API serves, so it works against the live
// database without going through the web console.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// ViewType selects the active screen.
type ViewType int

const (
	ViewDashboard ViewType = iota
	ViewSessions
	ViewSessionDetail
)

// Model is the main TUI model.
type Model struct {
	monitoring     service.MonitoringService
	sessions       service.SessionService
	disconnections service.DisconnectionService

	metrics *service.MonitoringMetrics
	stats   *repository.DisconnectionStats

	sessionList     []*repository.Session
	sessionTotal    int64
	selectedSession int
	detailSession   *repository.Session

	view   ViewType
	width  int
	height int

	loading bool
	err     error

	keys keyMap
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Tab     key.Binding
	Quit    key.Binding
	Refresh key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// NewModel creates the dashboard model.
func NewModel(
	monitoring service.MonitoringService,
	sessions service.SessionService,
	disconnections service.DisconnectionService,
) Model {
	return Model{
		monitoring:     monitoring,
		sessions:       sessions,
		disconnections: disconnections,
		view:           ViewDashboard,
		keys:           defaultKeyMap(),
		loading:        true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadDashboard(),
		tickCmd(),
	)
}

// Messages

type dashboardLoadedMsg struct {
	metrics *service.MonitoringMetrics
	stats   *repository.DisconnectionStats
}

type sessionsLoadedMsg struct {
	sessions []*repository.Session
	total    int64
}

type errorMsg struct {
	err error
}

type tickMsg time.Time

// Commands

func (m Model) loadDashboard() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		metrics, err := m.monitoring.Metrics(ctx)
		if err != nil {
			return errorMsg{err: err}
		}
		stats, err := m.disconnections.Stats(ctx, 24*time.Hour)
		if err != nil {
			return errorMsg{err: err}
		}
		return dashboardLoadedMsg{metrics: metrics, stats: stats}
	}
}

func (m Model) loadSessions() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		result, err := m.sessions.ListActive(ctx, 100, 0)
		if err != nil {
			return errorMsg{err: err}
		}
		return sessionsLoadedMsg{sessions: result.Sessions, total: result.Total}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
