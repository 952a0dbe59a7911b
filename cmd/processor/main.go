// Command processor consumes the location event stream and maintains the
// latest-fix cache per device. The API serves "where is the tracker right
// now" reads from this cache instead of scanning the day partition.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/medispecs/medispecs-api/internal/adapters/nats"
	"github.com/medispecs/medispecs-api/internal/adapters/valkey"
	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/pkg/config"
	"github.com/medispecs/medispecs-api/internal/pkg/logging"
)

// Latest fixes outlive the stream retention window so a tracker that went
// quiet overnight still resolves.
const latestFixTTLSeconds = 48 * 3600

func main() {
	cfg, err := config.Load("medispecs-processor")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeLocations(ctx, func(ctx context.Context, rec *domain.LocationRecord) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := cache.Set(ctx, "latest:"+rec.DeviceID, data, latestFixTTLSeconds); err != nil {
			slog.Warn("latest fix cache write failed", "device", rec.DeviceID, "error", err)
			return err
		}
		slog.Debug("latest fix updated", "device", rec.DeviceID, "ts_ms", rec.TSMillis)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("location processor started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig.String())
}
