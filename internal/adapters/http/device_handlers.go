package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

type deviceRequest struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
}

func RegisterDeviceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deviceRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		dev, err := deps.Devices.Register(c.Context(), userID(c, deps), req.DeviceID, req.Name)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(201).JSON(dev)
	}
}

func ListDevicesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		devices, err := deps.Devices.List(c.Context(), userID(c, deps))
		if err != nil {
			return serviceError(c, err)
		}
		if devices == nil {
			devices = []domain.Device{}
		}
		return c.JSON(devices)
	}
}

func GetDeviceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dev, err := deps.Devices.Get(c.Context(), userID(c, deps), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(dev)
	}
}
