package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/ports"
)

const deviceListLimit = 100

// DeviceService manages tracking device registrations.
type DeviceService struct {
	devices ports.DeviceRepository
}

func NewDeviceService(devices ports.DeviceRepository) *DeviceService {
	return &DeviceService{devices: devices}
}

// Register creates a device record. An explicit deviceID lets a physical
// tracker keep its hardware identifier.
func (s *DeviceService) Register(ctx context.Context, userID, deviceID, name string) (*domain.Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled Device"
	}
	if deviceID == "" {
		deviceID = "dev_" + uuid.NewString()[:10]
	}

	dev := &domain.Device{
		DeviceID:  deviceID,
		UserID:    userID,
		Name:      name,
		Status:    "active",
		CreatedAt: time.Now().UTC(),
	}
	dev.UpdatedAt = dev.CreatedAt

	if err := s.devices.Create(ctx, dev); err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}
	return dev, nil
}

func (s *DeviceService) List(ctx context.Context, userID string) ([]domain.Device, error) {
	devices, err := s.devices.List(ctx, userID, deviceListLimit)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

func (s *DeviceService) Get(ctx context.Context, userID, deviceID string) (*domain.Device, error) {
	return s.devices.Get(ctx, userID, deviceID)
}
