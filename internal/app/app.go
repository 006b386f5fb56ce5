// Package app assembles the stores and services shared by the API server and
// the rollcall CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/alert"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/attendance"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/audit"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/config"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/database"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/face"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/matcher"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/metrics"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/performance"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository/csvstore"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/service"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/webhook"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/ws"
)

const dbName = "rollcall"

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Repos    *repository.Repositories
	Detector provider.Detector
	Hub      *ws.Hub
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Audit    audit.Logger

	Employees   *service.EmployeeService
	Faces       *service.FaceService
	Attendance  *attendance.Service
	Performance *performance.Service
	Thresholds  *alert.ConfigHolder
	Alerts      *alert.Service
	Webhooks    *webhook.Service
	Notifier    *alert.Notifier

	closers []func()
}

// Open connects the storage driver named by cfg and wires every service.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	repos, closeRepos, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	detector, err := face.NewDetector(cfg)
	if err != nil {
		closeRepos()
		return nil, fmt.Errorf("create detector: %w", err)
	}

	a, err := New(cfg, repos, detector, logger)
	if err != nil {
		closeRepos()
		return nil, err
	}
	a.closers = append(a.closers, closeRepos)
	return a, nil
}

// OpenStorage returns the stores for cfg.StorageDriver and a func releasing
// them. The postgres driver applies pending migrations first.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Repositories, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if err := database.MigrateUp(cfg.DatabaseURL, dbName, logger); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("storage ready", "driver", cfg.StorageDriver)
		return repository.NewPostgres(pool), pool.Close, nil

	default:
		store, err := csvstore.Open(cfg.DataDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv store: %w", err)
		}
		logger.Info("storage ready", "driver", config.StorageCSV, "dir", cfg.DataDir)
		return store.Repositories(), func() {}, nil
	}
}

// New wires the services over already opened stores.
func New(cfg *config.Config, repos *repository.Repositories, detector provider.Detector, logger *slog.Logger) (*App, error) {
	resolverCfg, err := MatcherConfig(cfg)
	if err != nil {
		return nil, err
	}

	holder, err := alert.NewConfigHolder(AlertThresholds(cfg))
	if err != nil {
		return nil, fmt.Errorf("alert thresholds: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(registry)
	if err != nil {
		return nil, err
	}

	var auditLogger audit.Logger = audit.NewSlogLogger(logger)
	var closers []func()
	if cfg.AuditFile != "" {
		trail, err := audit.OpenFile(cfg.AuditFile)
		if err != nil {
			return nil, err
		}
		auditLogger = audit.Multi(auditLogger, trail)
		closers = append(closers, func() { _ = trail.Close() })
	}

	hub := ws.NewHub(logger)
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "rollcall_ws_clients",
		Help: "Dashboards connected to the live feed.",
	}, func() float64 { return float64(hub.ConnectedClients()) }))
	webhooks := webhook.NewService(webhook.Endpoint{
		URL:    cfg.AlertWebhookURL,
		Secret: cfg.AlertWebhookSecret,
	}, logger)

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Repos:      repos,
		Detector:   detector,
		Hub:        hub,
		Registry:   registry,
		Metrics:    m,
		Audit:      auditLogger,
		Thresholds: holder,
		Webhooks:   webhooks,
		closers:    closers,
	}

	a.Employees = service.NewEmployeeService(repos.Employees, logger)
	a.Faces = service.NewFaceService(repos.Faces, repos.Employees, detector, logger).
		WithPublisher(hub)
	a.Attendance = attendance.NewService(
		repos.Employees,
		repos.Faces,
		repos.Attendance,
		matcher.NewResolver(resolverCfg, logger),
		attendance.NewCooldown(cfg.AttendanceCooldown),
		logger,
	).WithDetector(detector).WithPublisher(hub).WithMetrics(m)
	a.Performance = performance.NewService(repos.Employees, repos.Performance, repos.Attendance, logger)
	a.Alerts = alert.NewService(repos.Employees, repos.Attendance, repos.Performance, holder, logger).
		WithMetrics(m)
	a.Notifier = alert.NewNotifier(webhooks, hub, m, logger)

	return a, nil
}

// MatcherConfig converts the matching settings.
func MatcherConfig(cfg *config.Config) (matcher.Config, error) {
	metric, err := matcher.ParseMetric(cfg.MatchMetric)
	if err != nil {
		return matcher.Config{}, fmt.Errorf("match metric: %w", err)
	}
	mc := matcher.DefaultConfig()
	mc.Metric = metric
	mc.Threshold = cfg.MatchThreshold
	mc.TieEpsilon = cfg.MatchTieEpsilon
	if err := mc.Validate(); err != nil {
		return matcher.Config{}, err
	}
	return mc, nil
}

// AlertThresholds converts the alert settings; unset values keep the defaults.
func AlertThresholds(cfg *config.Config) alert.Thresholds {
	t := alert.DefaultThresholds()
	if cfg.AlertAttendancePct > 0 {
		t.AttendancePct = cfg.AlertAttendancePct
	}
	if cfg.AlertPerformanceScore > 0 {
		t.PerformanceScore = cfg.AlertPerformanceScore
	}
	if cfg.AlertInactivityDays > 0 {
		t.InactivityDays = cfg.AlertInactivityDays
	}
	if cfg.AlertWindowDays > 0 {
		t.WindowDays = cfg.AlertWindowDays
	}
	if cfg.AlertScoreSource != "" {
		t.ScoreSource = alert.ScoreSource(cfg.AlertScoreSource)
	}
	return t
}

// Ping reports storage health.
func (a *App) Ping(ctx context.Context) error {
	if a.Repos.Ping == nil {
		return nil
	}
	return a.Repos.Ping(ctx)
}

// Close releases the stores.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
