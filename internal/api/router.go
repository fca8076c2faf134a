// Package api wires the HTTP surface of the admin console.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Valerdy/captive-portal-sub000/internal/api/handler"
	"github.com/Valerdy/captive-portal-sub000/internal/api/middleware"
	"github.com/Valerdy/captive-portal-sub000/internal/auth/token"
	"github.com/Valerdy/captive-portal-sub000/internal/config"
	"github.com/Valerdy/captive-portal-sub000/internal/security"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// Services collects everything the router needs.
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Devices       service.DeviceService
	Sites         service.SiteService
	Promotions    service.PromotionService
	Profiles      service.ProfileService
	Sessions      service.SessionService
	Disconnection service.DisconnectionService
	Accounting    service.AccountingService
	Monitoring    service.MonitoringService
}

// RouterOptions carry the cross-cutting dependencies.
type RouterOptions struct {
	Logger   *slog.Logger
	Tokens   *token.Manager
	Limiter  *security.RateLimiter
	Security config.SecurityConfig
	Metrics  config.MetricsConfig
}

// NewRouter assembles the full middleware stack and route tree.
func NewRouter(services Services, opts RouterOptions) http.Handler {
	if services.Auth == nil {
		panic("router requires AuthService")
	}
	if services.Users == nil {
		panic("router requires UserService")
	}
	if opts.Tokens == nil {
		panic("router requires token manager")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)

	if opts.Metrics.Enabled {
		mCfg := middleware.DefaultMetricsConfig()
		metrics := middleware.NewMetrics(mCfg)
		r.Use(metrics.Middleware(mCfg))
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(opts.Security.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = opts.Security.AllowedOrigins
	}

	rateCfg := middleware.DefaultRateLimitConfig()
	if opts.Security.RateLimitPerMinute > 0 {
		rateCfg.Limit = opts.Security.RateLimitPerMinute
	}

	maxBody := opts.Security.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r.Use(
		middleware.CORS(corsCfg),
		middleware.BodyLimit(maxBody),
		middleware.RateLimit(opts.Limiter, rateCfg),
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 500 * time.Millisecond,
			SkipPaths:     []string{"/healthz", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		chiMiddleware.Compress(5),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authHandler := handler.NewAuthHandler(services.Auth)
	userHandler := handler.NewUserHandler(services.Users, services.Sessions)
	deviceHandler := handler.NewDeviceHandler(services.Devices)
	siteHandler := handler.NewSiteHandler(services.Sites)
	promotionHandler := handler.NewPromotionHandler(services.Promotions)
	profileHandler := handler.NewProfileHandler(services.Profiles)
	sessionHandler := handler.NewSessionHandler(services.Sessions)
	disconnectionHandler := handler.NewDisconnectionHandler(services.Disconnection)
	accountingHandler := handler.NewAccountingHandler(services.Accounting)
	monitoringHandler := handler.NewMonitoringHandler(services.Monitoring)

	adminGuard := middleware.AdminGuard(opts.Tokens)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(adminGuard).Get("/me", authHandler.Me)
		})

		r.Route("/core", func(r chi.Router) {
			r.Use(adminGuard)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
				r.Post("/{id}/reset-password", userHandler.ResetPassword)
				r.Post("/{id}/activate-radius", userHandler.ActivateRadius)
				r.Post("/{id}/deactivate-radius", userHandler.DeactivateRadius)
				r.Get("/{id}/sessions", userHandler.Sessions)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", deviceHandler.List)
				r.Post("/", deviceHandler.Create)
				r.Get("/{id}", deviceHandler.Get)
				r.Put("/{id}", deviceHandler.Update)
				r.Delete("/{id}", deviceHandler.Delete)
				r.Post("/{id}/toggle", deviceHandler.Toggle)
			})

			r.Route("/sites", func(r chi.Router) {
				r.Get("/", siteHandler.List)
				r.Post("/", siteHandler.Create)
				r.Post("/import", siteHandler.Import)
				r.Get("/{id}", siteHandler.Get)
				r.Put("/{id}", siteHandler.Update)
				r.Delete("/{id}", siteHandler.Delete)
				r.Post("/{id}/toggle", siteHandler.Toggle)
			})

			r.Route("/promotions", func(r chi.Router) {
				r.Get("/", promotionHandler.List)
				r.Post("/", promotionHandler.Create)
				r.Get("/{id}", promotionHandler.Get)
				r.Put("/{id}", promotionHandler.Update)
				r.Delete("/{id}", promotionHandler.Delete)
			})

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/", profileHandler.List)
				r.Post("/", profileHandler.Create)
				r.Get("/{id}", profileHandler.Get)
				r.Put("/{id}", profileHandler.Update)
				r.Delete("/{id}", profileHandler.Delete)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.ListActive)
				r.Post("/{id}/disconnect", sessionHandler.Disconnect)
			})

			r.Route("/disconnection-logs", func(r chi.Router) {
				r.Get("/", disconnectionHandler.List)
				r.Get("/stats", disconnectionHandler.Stats)
				r.Post("/{id}/reactivate", disconnectionHandler.Reactivate)
			})

			r.Route("/monitoring", func(r chi.Router) {
				r.Get("/metrics", monitoringHandler.Metrics)
				r.Get("/history", monitoringHandler.History)
			})
		})

		r.Route("/radius", func(r chi.Router) {
			r.Use(middleware.AccountingGuard(opts.Security.AccountingToken))
			r.Post("/accounting", accountingHandler.Ingest)
		})
	})

	return r
}
