package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case dashboardLoadedMsg:
		m.loading = false
		m.metrics = msg.metrics
		m.stats = msg.stats
		m.err = nil
		return m, nil

	case sessionsLoadedMsg:
		m.loading = false
		m.sessionList = msg.sessions
		m.sessionTotal = msg.total
		m.err = nil
		if m.selectedSession >= len(m.sessionList) {
			m.selectedSession = 0
		}
		// Refresh the detail view with the latest counters.
		if m.view == ViewSessionDetail && m.detailSession != nil {
			for i := range m.sessionList {
				if m.sessionList[i].ID == m.detailSession.ID {
					m.detailSession = m.sessionList[i]
					break
				}
			}
		}
		return m, nil

	case errorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tickMsg:
		switch m.view {
		case ViewDashboard:
			return m, tea.Batch(m.loadDashboard(), tickCmd())
		case ViewSessions, ViewSessionDetail:
			return m, tea.Batch(m.loadSessions(), tickCmd())
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.view == ViewSessions && len(m.sessionList) > 0 {
			m.selectedSession--
			if m.selectedSession < 0 {
				m.selectedSession = len(m.sessionList) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.view == ViewSessions && len(m.sessionList) > 0 {
			m.selectedSession++
			if m.selectedSession >= len(m.sessionList) {
				m.selectedSession = 0
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.view == ViewSessions && len(m.sessionList) > 0 {
			m.detailSession = m.sessionList[m.selectedSession]
			m.view = ViewSessionDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		switch m.view {
		case ViewSessionDetail:
			m.view = ViewSessions
			m.detailSession = nil
		case ViewSessions:
			m.view = ViewDashboard
			m.loading = true
			return m, m.loadDashboard()
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		switch m.view {
		case ViewDashboard:
			m.view = ViewSessions
			m.loading = true
			return m, m.loadSessions()
		default:
			m.view = ViewDashboard
			m.detailSession = nil
			m.loading = true
			return m, m.loadDashboard()
		}

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		if m.view == ViewDashboard {
			return m, m.loadDashboard()
		}
		return m, m.loadSessions()
	}

	return m, nil
}
