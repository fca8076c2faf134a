package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/api"
	"github.com/Valerdy/captive-portal-sub000/internal/config"
	"github.com/Valerdy/captive-portal-sub000/internal/job"
	"github.com/Valerdy/captive-portal-sub000/internal/monitor"
	"github.com/Valerdy/captive-portal-sub000/internal/nas"
	"github.com/Valerdy/captive-portal-sub000/internal/repository/sqlite"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// App holds every component of the running panel.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *sql.DB
	Store     *sqlite.Store
	Infra     *Infrastructure
	NAS       *nas.Client
	Collector *monitor.Collector
	Ring      *monitor.Ring
	Services  api.Services
	Enforcer  service.QuotaEnforcer
	Scheduler *job.Scheduler
	Server    *http.Server
}

// BuildApp assembles the whole application from configuration. The caller owns
// the returned resources and closes them through App.Close.
func BuildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := OpenAndMigrate(cfg.DB.Path)
	if err != nil {
		return nil, err
	}

	infra, err := BuildInfrastructure(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := sqlite.NewStore(db)

	nasClient := nas.NewClient(nas.Options{
		URL:      cfg.NAS.DisconnectURL,
		Secret:   cfg.NAS.Secret,
		Timeout:  cfg.NAS.Timeout,
		RetryMax: cfg.NAS.RetryMax,
		Logger:   logger,
	})

	collector := monitor.New(monitor.Options{
		NASHost:     cfg.NAS.PingHost,
		PingTimeout: cfg.NAS.Timeout,
		Interface:   cfg.Monitoring.Interface,
	})
	ring := monitor.NewRing(cfg.Monitoring.RingSize)

	provisioner := service.NewRadiusProvisioner(store.Radius())
	activity := service.NewActivityFeed(infra.Cache.Namespace("monitoring"), 20)

	services := api.Services{
		Auth: service.NewAuthService(service.AuthOptions{
			Users:      store.Users(),
			Hasher:     infra.Hasher,
			Tokens:     infra.Token,
			Limiter:    infra.RateLimiter,
			Audit:      infra.Audit,
			AccessTTL:  cfg.Auth.TokenTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
		}),
		Users:      service.NewUserService(store.Users(), store.Promotions(), infra.Hasher, provisioner),
		Devices:    service.NewDeviceService(store.Devices(), store.Users()),
		Sites:      service.NewSiteService(store.Sites()),
		Promotions: service.NewPromotionService(store.Promotions(), store.Profiles(), store.Users(), provisioner),
		Profiles:   service.NewProfileService(store.Profiles(), store.Promotions(), provisioner),
		Sessions:   service.NewSessionService(store.Sessions(), store.DisconnectionLogs(), nasClient, activity),
		Disconnection: service.NewDisconnectionService(
			store.DisconnectionLogs(), store.Users(), provisioner, infra.Audit),
		Accounting: service.NewAccountingService(store.Sessions(), store.Devices(), store.Users(), activity, logger),
		Monitoring: service.NewMonitoringService(
			collector, ring, store.MonitoringSamples(), store.Sessions(), store.Users(), store.DisconnectionLogs(), activity),
	}

	enforcer := service.NewQuotaEnforcer(service.QuotaEnforcerOptions{
		Users:        store.Users(),
		Promotions:   store.Promotions(),
		Profiles:     store.Profiles(),
		Sessions:     store.Sessions(),
		Logs:         store.DisconnectionLogs(),
		Provisioner:  provisioner,
		Disconnector: nasClient,
		Logger:       logger,
	})

	scheduler, err := buildScheduler(cfg, logger, services, enforcer, store)
	if err != nil {
		db.Close()
		return nil, err
	}

	router := api.NewRouter(services, api.RouterOptions{
		Logger:   logger,
		Tokens:   infra.Token,
		Limiter:  infra.RateLimiter,
		Security: cfg.Security,
		Metrics:  cfg.Metrics,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Store:     store,
		Infra:     infra,
		NAS:       nasClient,
		Collector: collector,
		Ring:      ring,
		Services:  services,
		Enforcer:  enforcer,
		Scheduler: scheduler,
		Server:    NewHTTPServer(cfg, router),
	}, nil
}

func buildScheduler(
	cfg *config.Config,
	logger *slog.Logger,
	services api.Services,
	enforcer service.QuotaEnforcer,
	store *sqlite.Store,
) (*job.Scheduler, error) {
	scheduler := job.NewScheduler(logger)

	sampleEvery := cfg.Monitoring.SampleInterval
	if sampleEvery <= 0 {
		sampleEvery = 3 * time.Second
	}
	if _, err := scheduler.Register(
		fmt.Sprintf("@every %s", sampleEvery), job.NewMonitoringSampleJob(services.Monitoring, logger)); err != nil {
		return nil, fmt.Errorf("register monitoring sample job: %w", err)
	}

	enforceEvery := cfg.Quota.EnforceInterval
	if enforceEvery <= 0 {
		enforceEvery = time.Minute
	}
	if _, err := scheduler.Register(
		fmt.Sprintf("@every %s", enforceEvery), job.NewQuotaEnforceJob(enforcer, logger)); err != nil {
		return nil, fmt.Errorf("register quota enforce job: %w", err)
	}

	if _, err := scheduler.Register(
		"@every 5m", job.NewSessionSweepJob(store.Sessions(), cfg.Quota.SessionStale, logger)); err != nil {
		return nil, fmt.Errorf("register session sweep job: %w", err)
	}

	if _, err := scheduler.Register(
		"@hourly", job.NewDeviceSweepJob(store.Devices(), cfg.Quota.DeviceInactive, logger)); err != nil {
		return nil, fmt.Errorf("register device sweep job: %w", err)
	}

	if _, err := scheduler.Register(
		"@hourly", job.NewMonitoringPruneJob(services.Monitoring, cfg.Monitoring.Retention, logger)); err != nil {
		return nil, fmt.Errorf("register monitoring prune job: %w", err)
	}

	return scheduler, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.Scheduler != nil {
		<-a.Scheduler.Stop().Done()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
