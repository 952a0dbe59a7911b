package http

import (
	"github.com/nats-io/nats.go"

	"github.com/medispecs/medispecs-api/internal/adapters/postgres"
	"github.com/medispecs/medispecs-api/internal/adapters/valkey"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Locations   *usecases.LocationService
	Medications *usecases.MedicationService
	Family      *usecases.FamilyService
	Cognitive   *usecases.CognitiveService
	Devices     *usecases.DeviceService
	Videos      *usecases.VideoService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache

	// DemoUserID stands in when a request names no user. Auth is handled
	// upstream of this service.
	DemoUserID string
}
