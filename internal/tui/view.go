package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// View implements tea.Model
func (m Model) View() string {
	var body string
	switch m.view {
	case ViewDashboard:
		body = m.renderDashboard()
	case ViewSessions:
		body = m.renderSessions()
	case ViewSessionDetail:
		body = m.renderSessionDetail()
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("Portal Monitor"))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(styleDown.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHelp() string {
	parts := []string{"tab switch view", "r refresh", "q quit"}
	if m.view == ViewSessions {
		parts = append([]string{"↑/↓ select", "enter details"}, parts...)
	}
	if m.view == ViewSessionDetail {
		parts = append([]string{"esc back"}, parts...)
	}
	return styleHelp.Render(strings.Join(parts, "  ·  "))
}

func (m Model) renderDashboard() string {
	if m.loading && m.metrics == nil {
		return styleMuted().Render("loading...")
	}
	if m.metrics == nil {
		return styleMuted().Render("no data yet")
	}

	metrics := m.metrics
	var rows []string
	rows = append(rows,
		renderField("Active sessions", fmt.Sprintf("%d", metrics.ActiveSessions)),
		renderField("Users", fmt.Sprintf("%d total / %d active", metrics.TotalUsers, metrics.ActiveUsers)),
		renderField("Blocked users", fmt.Sprintf("%d", metrics.ActiveDisconnections)),
		renderField("Traffic", fmt.Sprintf("↓ %s/s  ↑ %s/s",
			formatBytes(metrics.RxBytesPerSec), formatBytes(metrics.TxBytesPerSec))),
		renderField("CPU", fmt.Sprintf("%s %.1f%%", ProgressBar(metrics.CPUPercent, 20), metrics.CPUPercent)),
		renderField("Memory", fmt.Sprintf("%s %.1f%%", ProgressBar(metrics.MemPercent, 20), metrics.MemPercent)),
		renderField("Gateway", NASIcon(metrics.NASReachable)),
	)
	if metrics.TakenAt > 0 {
		rows = append(rows, renderField("Sampled", time.Unix(metrics.TakenAt, 0).Format("15:04:05")))
	}
	overview := styleBox.Render(strings.Join(rows, "\n"))

	if m.stats == nil {
		return overview
	}
	var statRows []string
	statRows = append(statRows,
		renderField("Cut-offs (24h)", fmt.Sprintf("%d", m.stats.Total)),
		renderField("Still blocked", fmt.Sprintf("%d", m.stats.Active)),
	)
	for reason, count := range m.stats.ByReason {
		statRows = append(statRows, renderField("  "+reason, fmt.Sprintf("%d", count)))
	}
	disconnections := styleBox.Render(strings.Join(statRows, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, overview, disconnections)
}

func (m Model) renderSessions() string {
	if m.loading && len(m.sessionList) == 0 {
		return styleMuted().Render("loading...")
	}
	if len(m.sessionList) == 0 {
		return styleMuted().Render("no active sessions")
	}

	header := styleTableHeader.Render(fmt.Sprintf("%-16s %-18s %-15s %-10s %-10s %s",
		"USER", "MAC", "IP", "DOWN", "UP", "STARTED"))

	var rows []string
	rows = append(rows, header)
	for i, session := range m.sessionList {
		line := fmt.Sprintf("%-16s %-18s %-15s %-10s %-10s %s",
			truncate(session.Username, 16),
			session.MAC,
			session.FramedIP,
			formatBytes(session.OutputOctets),
			formatBytes(session.InputOctets),
			time.Unix(session.StartedAt, 0).Format("15:04:05"),
		)
		if i == m.selectedSession {
			rows = append(rows, styleTableRowSelected.Render(line))
		} else {
			rows = append(rows, styleTableRow.Render(line))
		}
	}
	rows = append(rows, styleMuted().Render(fmt.Sprintf("%d active sessions", m.sessionTotal)))
	return strings.Join(rows, "\n")
}

func (m Model) renderSessionDetail() string {
	session := m.detailSession
	if session == nil {
		return styleMuted().Render("no session selected")
	}
	rows := []string{
		renderField("Session ID", session.AcctSessionID),
		renderField("User", session.Username),
		renderField("MAC", session.MAC),
		renderField("NAS", session.NASIPAddress),
		renderField("IP", session.FramedIP),
		renderField("Started", time.Unix(session.StartedAt, 0).Format("2006-01-02 15:04:05")),
		renderField("Duration", formatDuration(sessionDuration(session))),
		renderField("Downloaded", formatBytes(session.OutputOctets)),
		renderField("Uploaded", formatBytes(session.InputOctets)),
	}
	return styleDetailBox.Render(strings.Join(rows, "\n"))
}

func renderField(label, value string) string {
	return styleLabel.Render(label) + styleValue.Render(value)
}

func sessionDuration(session *repository.Session) time.Duration {
	end := time.Now().Unix()
	if session.StoppedAt > 0 {
		end = session.StoppedAt
	}
	return time.Duration(end-session.StartedAt) * time.Second
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	mins := d / time.Minute
	secs := (d - mins*time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, mins, secs)
	}
	return fmt.Sprintf("%dm%02ds", mins, secs)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
