package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/medispecs/medispecs-api/internal/adapters/facerec"
	"github.com/medispecs/medispecs-api/internal/adapters/http"
	minioadapter "github.com/medispecs/medispecs-api/internal/adapters/minio"
	natsadapter "github.com/medispecs/medispecs-api/internal/adapters/nats"
	"github.com/medispecs/medispecs-api/internal/adapters/postgres"
	"github.com/medispecs/medispecs-api/internal/adapters/valkey"
	"github.com/medispecs/medispecs-api/internal/core/ports"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
	"github.com/medispecs/medispecs-api/internal/pkg/config"
	"github.com/medispecs/medispecs-api/internal/pkg/logging"
	"github.com/medispecs/medispecs-api/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("medispecs-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache (optional: the API degrades to uncached reads without it)
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS (optional: events are best-effort)
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Object storage
	store, err := minioadapter.New(ctx,
		cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey,
		cfg.Storage.Bucket, cfg.Storage.UseSSL,
	)
	if err != nil {
		log.Fatalf("object store: %v", err)
	}

	// Face recognition service
	faces := facerec.New(cfg.FaceRec.BaseURL, cfg.FaceRec.Collection, 10*time.Second)

	// Repos
	locationRepo := postgres.NewLocationRepo(db)
	medicationRepo := postgres.NewMedicationRepo(db)
	familyRepo := postgres.NewFamilyRepo(db)
	cognitiveRepo := postgres.NewCognitiveRepo(db)
	deviceRepo := postgres.NewDeviceRepo(db)
	videoRepo := postgres.NewVideoRepo(db)

	// Use cases
	locationSvc := usecases.NewLocationService(locationRepo, publisher, cacheSvc)
	medicationSvc := usecases.NewMedicationService(medicationRepo, store, cacheSvc, cfg.API.BaseURL, "medications")
	familySvc := usecases.NewFamilyService(familyRepo, store, faces, publisher, cfg.API.BaseURL, "family")
	cognitiveSvc := usecases.NewCognitiveService(cognitiveRepo)
	deviceSvc := usecases.NewDeviceService(deviceRepo)
	videoSvc := usecases.NewVideoService(videoRepo, store, 15*time.Minute)

	deps := &http.Dependencies{
		Locations:   locationSvc,
		Medications: medicationSvc,
		Family:      familySvc,
		Cognitive:   cognitiveSvc,
		Devices:     deviceSvc,
		Videos:      videoSvc,
		NATS:        natsConn,
		DB:          db,
		Cache:       cache,
		DemoUserID:  cfg.API.DemoUserID,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    10 * 1024 * 1024, // photos arrive base64-encoded in JSON bodies
		AppName:      "MediSpecs API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.API.CORSOrigins,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
