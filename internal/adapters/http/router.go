package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/medispecs/medispecs-api/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Preflight: 204 with empty body, no routing
	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(204)
	})

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")

	v1.Get("/locations", timeout.NewWithContext(QueryLocationsHandler(deps), 15*time.Second))
	v1.Get("/locations/latest", timeout.NewWithContext(LatestLocationHandler(deps), 15*time.Second))
	v1.Post("/locations", timeout.NewWithContext(IngestLocationsHandler(deps), 15*time.Second))

	v1.Get("/medications", timeout.NewWithContext(ListMedicationsHandler(deps), 15*time.Second))
	v1.Post("/medications", timeout.NewWithContext(CreateMedicationHandler(deps), 15*time.Second))
	v1.Get("/medications/:id", timeout.NewWithContext(GetMedicationHandler(deps), 15*time.Second))
	v1.Patch("/medications/:id", timeout.NewWithContext(UpdateMedicationHandler(deps), 15*time.Second))
	v1.Delete("/medications/:id", timeout.NewWithContext(DeleteMedicationHandler(deps), 15*time.Second))
	v1.Get("/medications/:id/photo", timeout.NewWithContext(MedicationPhotoHandler(deps), 15*time.Second))

	v1.Get("/family", timeout.NewWithContext(ListFamilyMembersHandler(deps), 15*time.Second))
	v1.Post("/family", timeout.NewWithContext(CreateFamilyMemberHandler(deps), 30*time.Second))
	v1.Delete("/family/:id", timeout.NewWithContext(DeleteFamilyMemberHandler(deps), 15*time.Second))
	v1.Get("/family/:id/photo", timeout.NewWithContext(FamilyPhotoHandler(deps), 15*time.Second))
	v1.Post("/family/recognize", timeout.NewWithContext(RecognizeFaceHandler(deps), 30*time.Second))

	v1.Get("/cognitive", timeout.NewWithContext(ListExercisesHandler(deps), 15*time.Second))
	v1.Post("/cognitive", timeout.NewWithContext(CreateExerciseHandler(deps), 15*time.Second))
	v1.Get("/cognitive/:id", timeout.NewWithContext(GetExerciseHandler(deps), 15*time.Second))
	v1.Patch("/cognitive/:id", timeout.NewWithContext(UpdateExerciseHandler(deps), 15*time.Second))
	v1.Delete("/cognitive/:id", timeout.NewWithContext(DeleteExerciseHandler(deps), 15*time.Second))

	v1.Get("/devices", timeout.NewWithContext(ListDevicesHandler(deps), 15*time.Second))
	v1.Post("/devices", timeout.NewWithContext(RegisterDeviceHandler(deps), 15*time.Second))
	v1.Get("/devices/:id", timeout.NewWithContext(GetDeviceHandler(deps), 15*time.Second))

	v1.Get("/videos", timeout.NewWithContext(ListVideosHandler(deps), 15*time.Second))
	v1.Post("/videos", timeout.NewWithContext(CreateVideoHandler(deps), 15*time.Second))
	v1.Get("/videos/:id", timeout.NewWithContext(GetVideoHandler(deps), 15*time.Second))
	v1.Get("/videos/:id/playback", timeout.NewWithContext(VideoPlaybackHandler(deps), 15*time.Second))
	v1.Delete("/videos/:id", timeout.NewWithContext(DeleteVideoHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
