package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
)

type videoRequest struct {
	VideoID       string `json:"videoId"`
	DeviceID      string `json:"deviceId"`
	Title         string `json:"title"`
	MimeType      string `json:"mimeType"`
	RecordedAt    string `json:"recordedAt"`
	DurationSec   *int   `json:"durationSec"`
	FileSizeBytes *int64 `json:"fileSizeBytes"`
}

// CreateVideoHandler registers clip metadata and returns a presigned upload
// URL; the media bytes go straight to object storage.
func CreateVideoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req videoRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		video, uploadURL, err := deps.Videos.Create(c.Context(), userID(c, deps), usecases.VideoInput{
			VideoID:       req.VideoID,
			DeviceID:      req.DeviceID,
			Title:         req.Title,
			MimeType:      req.MimeType,
			RecordedAt:    req.RecordedAt,
			DurationSec:   req.DurationSec,
			FileSizeBytes: req.FileSizeBytes,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(201).JSON(fiber.Map{
			"video":     video,
			"uploadUrl": uploadURL,
		})
	}
}

// ListVideosHandler returns clips newest-first, optionally windowed by date
// (dateFrom/dateTo) and time of day (timeFrom/timeTo).
func ListVideosHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		videos, err := deps.Videos.List(c.Context(), userID(c, deps), usecases.VideoFilter{
			DateFrom: c.Query("dateFrom"),
			DateTo:   c.Query("dateTo"),
			TimeFrom: c.Query("timeFrom"),
			TimeTo:   c.Query("timeTo"),
		})
		if err != nil {
			return serviceError(c, err)
		}
		if videos == nil {
			videos = []domain.Video{}
		}
		return c.JSON(videos)
	}
}

func GetVideoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		video, err := deps.Videos.Get(c.Context(), userID(c, deps), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(video)
	}
}

// VideoPlaybackHandler returns a presigned download URL for the clip.
func VideoPlaybackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := deps.Videos.PlaybackURL(c.Context(), userID(c, deps), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"playbackUrl": url})
	}
}

func DeleteVideoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Videos.Delete(c.Context(), userID(c, deps), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(204)
	}
}
