package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/admin"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/audit"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/metrics"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/ws"
)

// bodyLimit leaves room for a 10MB image plus multipart overhead.
const bodyLimit = 12 * 1024 * 1024

type Dependencies struct {
	Employees   handler.EmployeeService
	Faces       handler.FaceService
	Attendance  handler.AttendanceService
	Performance handler.PerformanceService
	Stats       handler.StatsProvider
	Alerts      handler.AlertService

	Hub     *ws.Hub
	Tokens  middleware.TokenValidator
	Audit   audit.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Ping     handler.PingFunc

	RateLimit int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Rollcall API",
		BodyLimit:    bodyLimit,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	var m *metrics.Metrics
	if r.deps != nil {
		m = r.deps.Metrics
	}

	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Logger(r.logger, m))
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var ping handler.PingFunc
	if r.deps != nil {
		ping = r.deps.Ping
	}
	healthHandler := handler.NewHealthHandler(ping, r.logger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	if r.deps.Gatherer != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	auditLogger := r.deps.Audit
	if auditLogger == nil {
		auditLogger = audit.Discard
	}

	var publisher ws.Publisher
	if r.deps.Hub != nil {
		publisher = r.deps.Hub
	}

	// API v1 group with authentication
	v1 := r.app.Group("/v1")
	v1.Use(middleware.Auth(middleware.AuthDependencies{
		Tokens: r.deps.Tokens,
		Logger: r.logger,
	}))

	// Rate limiting (per token subject) - must come after auth
	r.rateLimiter = middleware.NewRateLimiter(r.deps.RateLimit, time.Minute)
	v1.Use(r.rateLimiter.Handler())

	adminOnly := middleware.RequireRole(admin.RoleAdmin, r.logger)

	employeeHandler := handler.NewEmployeeHandler(r.deps.Employees, r.deps.Stats, auditLogger, r.logger)
	faceHandler := handler.NewFaceHandler(r.deps.Faces, auditLogger, r.logger)
	attendanceHandler := handler.NewAttendanceHandler(r.deps.Attendance, auditLogger, r.logger)
	performanceHandler := handler.NewPerformanceHandler(r.deps.Performance, r.logger)
	alertHandler := handler.NewAlertHandler(r.deps.Alerts, publisher, auditLogger, r.logger)

	// Employee directory
	v1.Get("/employees", employeeHandler.List)
	v1.Post("/employees", adminOnly, employeeHandler.Create)
	v1.Get("/employees/:id", employeeHandler.Get)
	v1.Put("/employees/:id", adminOnly, employeeHandler.Update)
	v1.Delete("/employees/:id", adminOnly, employeeHandler.Delete)
	v1.Get("/employees/:id/stats", employeeHandler.Stats)

	// Face registry
	v1.Put("/employees/:id/face", adminOnly, faceHandler.Enroll)
	v1.Delete("/employees/:id/face", adminOnly, faceHandler.Remove)

	// Attendance
	v1.Post("/attendance/manual", attendanceHandler.Manual)
	v1.Post("/attendance/match", attendanceHandler.Match)
	v1.Post("/attendance/image", attendanceHandler.Image)
	v1.Get("/attendance", attendanceHandler.List)

	// Performance
	v1.Post("/performance", adminOnly, performanceHandler.Record)
	v1.Get("/performance", performanceHandler.List)
	v1.Get("/departments/:name/stats", performanceHandler.Department)

	// Alerts
	v1.Get("/alerts", alertHandler.List)
	v1.Get("/alerts/export", alertHandler.Export)
	v1.Get("/alerts/config", alertHandler.GetConfig)
	v1.Put("/alerts/config", adminOnly, alertHandler.UpdateConfig)

	// WebSocket endpoint
	if r.deps.Hub != nil {
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops accepting requests. The hub and workers belong to the caller.
func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
