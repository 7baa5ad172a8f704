package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lingua-attendance-api/internal/config"
	"github.com/noah-isme/lingua-attendance-api/internal/database"
	"github.com/noah-isme/lingua-attendance-api/internal/export"
	"github.com/noah-isme/lingua-attendance-api/internal/handler"
	"github.com/noah-isme/lingua-attendance-api/internal/middleware"
	"github.com/noah-isme/lingua-attendance-api/internal/models"
	"github.com/noah-isme/lingua-attendance-api/internal/repository"
	"github.com/noah-isme/lingua-attendance-api/internal/router"
	"github.com/noah-isme/lingua-attendance-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Course{}, &models.Student{}, &models.Enrollment{}, &models.AttendanceRecord{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis is optional: stats fall back to direct queries without it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	attendanceRepo := repository.NewAttendanceRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	exporter := export.New(cfg.ExportLocale)

	catalogService := service.NewCatalogService(courseRepo, logger)
	rosterService := service.NewRosterService(enrollmentRepo, logger)
	recorderService := service.NewRecorderService(attendanceRepo, courseRepo, rosterService, validate, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, courseRepo, exporter, cfg.WeekStart, logger)
	statsService := service.NewStatsService(attendanceRepo, redisClient, cfg.StatsCacheTTL, logger)

	courseHandler := handler.NewCourseHandler(catalogService, rosterService, logger)
	recordingHandler := handler.NewRecordingHandler(recorderService, logger)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, logger)
	statsHandler := handler.NewStatsHandler(statsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:     courseHandler,
		RecordingHandler:  recordingHandler,
		AttendanceHandler: attendanceHandler,
		StatsHandler:      statsHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
