package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Valerdy/captive-portal-sub000/internal/bootstrap"
	"github.com/Valerdy/captive-portal-sub000/internal/config"
	"github.com/Valerdy/captive-portal-sub000/internal/monitor"
	"github.com/Valerdy/captive-portal-sub000/internal/nas"
	"github.com/Valerdy/captive-portal-sub000/internal/repository/sqlite"
	"github.com/Valerdy/captive-portal-sub000/internal/security"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
	"github.com/Valerdy/captive-portal-sub000/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Long:  "Launch an interactive terminal UI showing live sessions and system health.",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := bootstrap.OpenAndMigrate(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store := sqlite.NewStore(db)

	collector := monitor.New(monitor.Options{
		NASHost:     cfg.NAS.PingHost,
		PingTimeout: cfg.NAS.Timeout,
		Interface:   cfg.Monitoring.Interface,
	})
	ring := monitor.NewRing(cfg.Monitoring.RingSize)
	monitoring := service.NewMonitoringService(
		collector, ring, store.MonitoringSamples(), store.Sessions(), store.Users(), store.DisconnectionLogs(), nil)

	nasClient := nas.NewClient(nas.Options{
		URL:      cfg.NAS.DisconnectURL,
		Secret:   cfg.NAS.Secret,
		Timeout:  cfg.NAS.Timeout,
		RetryMax: cfg.NAS.RetryMax,
	})
	sessions := service.NewSessionService(store.Sessions(), store.DisconnectionLogs(), nasClient, nil)

	provisioner := service.NewRadiusProvisioner(store.Radius())
	disconnections := service.NewDisconnectionService(
		store.DisconnectionLogs(), store.Users(), provisioner, security.NewLoggerRecorder(nil))

	// Warm the ring so the first paint has a data point.
	_ = monitoring.Sample(cmd.Context())

	model := tui.NewModel(monitoring, sessions, disconnections)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
