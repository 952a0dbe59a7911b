package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
	"github.com/medispecs/medispecs-api/internal/pkg/metrics"
)

type ingestRequest struct {
	DeviceID  string               `json:"deviceId"`
	Locations []domain.RawLocation `json:"locations"`
}

// IngestLocationsHandler accepts a batch of GPS points. The outcome is
// three-way: 201 when every write lands, 207 when only some do, 500 when
// valid points existed but none could be written.
func IngestLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ingestRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		res, err := deps.Locations.Ingest(c.Context(), req.DeviceID, req.Locations)
		if err != nil {
			return serviceError(c, err)
		}

		metrics.LocationsIngested.WithLabelValues(req.DeviceID).Add(float64(res.Written))
		metrics.LocationsSkipped.WithLabelValues(req.DeviceID).Add(float64(res.Skipped))
		metrics.LocationWriteErrors.WithLabelValues(req.DeviceID).Add(float64(len(res.Errors)))

		switch {
		case res.AllFailed():
			return c.Status(500).JSON(fiber.Map{
				"message": "Failed to write any locations",
				"errors":  res.TruncatedErrors(),
			})
		case res.Partial():
			return c.Status(207).JSON(fiber.Map{
				"message":       fmt.Sprintf("Successfully wrote %d/%d location(s)", res.Written, res.Written+len(res.Errors)),
				"count":         res.Written,
				"errors":        len(res.Errors),
				"error_details": res.ErrorDetails(),
			})
		default:
			return c.Status(201).JSON(fiber.Map{
				"message": fmt.Sprintf("Successfully wrote %d location(s)", res.Written),
				"count":   res.Written,
			})
		}
	}
}

// QueryLocationsHandler returns points for a single day, an inclusive date
// range, or today when neither is given.
func QueryLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := usecases.LocationQuery{
			DeviceID: c.Query("deviceId"),
			Date:     c.Query("date"),
			FromDate: c.Query("fromDate"),
			ToDate:   c.Query("toDate"),
			Limit:    c.QueryInt("limit", 0),
		}

		points, err := deps.Locations.Query(c.Context(), q)
		if err != nil {
			return serviceError(c, err)
		}
		if points == nil {
			points = []domain.LocationPoint{}
		}
		return c.JSON(points)
	}
}

// LatestLocationHandler answers "where is the tracker right now" from the
// per-device cache the stream processor keeps current. 404 means no fix is
// cached for the device, not that the device is unknown.
func LatestLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		point, err := deps.Locations.Latest(c.Context(), c.Query("deviceId"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(point)
	}
}
