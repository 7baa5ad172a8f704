package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lingua-attendance-api/internal/config"
	"github.com/noah-isme/lingua-attendance-api/internal/handler"
	"github.com/noah-isme/lingua-attendance-api/internal/middleware"
	"github.com/noah-isme/lingua-attendance-api/internal/observability"
	"github.com/noah-isme/lingua-attendance-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler     *handler.CourseHandler
	RecordingHandler  *handler.RecordingHandler
	AttendanceHandler *handler.AttendanceHandler
	StatsHandler      *handler.StatsHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Course catalog and rosters
	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	// Attendance capture sessions: teachers and admins only
	if deps.RecordingHandler != nil {
		recordings := api.Group("/recordings", jwtMiddleware,
			middleware.RequireRole(service.RoleTeacher, service.RoleAdmin))
		deps.RecordingHandler.Register(recordings)
	}

	// Record views and weekly export
	if deps.AttendanceHandler != nil {
		attendance := api.Group("/attendance", jwtMiddleware)
		exportLimiter := middleware.RateLimit("attendance-export", cfg.ExportRateLimit, time.Minute)
		deps.AttendanceHandler.Register(attendance, exportLimiter)
	}

	// Aggregated statistics
	if deps.StatsHandler != nil {
		stats := api.Group("/stats", jwtMiddleware)
		deps.StatsHandler.Register(stats)
	}
}
