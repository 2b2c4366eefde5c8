package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-telemetry/internal/config"

	analyticsHttp "event-telemetry/internal/analytics/adapters/http/fiber"
	analyticsRepoPg "event-telemetry/internal/analytics/adapters/postgres"
	analyticsUsecase "event-telemetry/internal/analytics/core/usecase"

	eventsHttp "event-telemetry/internal/events/adapters/http/fiber"
	eventsRepoPg "event-telemetry/internal/events/adapters/postgres"
	eventsUsecase "event-telemetry/internal/events/core/usecase"

	projectsHttp "event-telemetry/internal/projects/adapters/http/fiber"
	projectsRepoPg "event-telemetry/internal/projects/adapters/postgres"
	projectsCache "event-telemetry/internal/projects/adapters/redis"
	projectsPorts "event-telemetry/internal/projects/core/ports"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"golang.org/x/sync/errgroup"

	_ "event-telemetry/docs"
)

func main() {
	configPath := pflag.String("config", "", "path to config.yaml")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Log.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	}

	// DB connection
	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("failed to open postgres: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime))

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping postgres: %v", err)
	}

	// Repositories
	eventRepository := eventsRepoPg.NewEventRepository(eventsRepoPg.NewSQLDB(db))
	analyticsRepository := analyticsRepoPg.NewAnalyticsRepository(analyticsRepoPg.NewSQLDB(db))
	projectReader := projectsRepoPg.NewProjectRepository(db)

	// Optional redis cache in front of the project reader.
	var projects projectsPorts.ProjectReaderPort = projectReader
	if cfg.Redis.Addr != "" {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer rc.Close()
		projects = projectsCache.NewCache(projectReader, rc, time.Duration(cfg.Redis.ProjectCacheTTL))
		log.WithField("addr", cfg.Redis.Addr).Info("project cache enabled")
	}

	// Usecases
	trackEventsUC := eventsUsecase.NewTrackEventsUseCase(eventRepository)
	analyticsUC := analyticsUsecase.NewAnalyticsUseCase(analyticsRepository)

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	// ingestion boundary (API-key authenticated)
	eventsHandler := eventsHttp.NewEventHandler(trackEventsUC)
	app.Post("/events", projectsHttp.APIKeyAuth(projects), eventsHandler.TrackEvents)

	// administrative surface
	app.Get("/events", eventsHandler.QueryEvents)
	app.Delete("/projects/:projectId/events", eventsHandler.DeleteProjectEvents)

	analyticsHandler := analyticsHttp.NewAnalyticsHandler(analyticsUC)
	app.Get("/projects/:projectId/stats", analyticsHandler.GetProjectStats)
	app.Get("/projects/:projectId/daily-active-users", analyticsHandler.GetDailyActiveUsers)
	app.Get("/projects/:projectId/funnel", analyticsHandler.GetEventFunnel)
	app.Get("/projects/:projectId/retention", analyticsHandler.GetUserRetention)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	var g errgroup.Group
	g.Go(func() error {
		log.WithField("addr", cfg.Server.Addr).Info("server started")
		return app.Listen(cfg.Server.Addr)
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.ShutdownWithContext(ctx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped")
	}

	log.Info("server exiting")
}
