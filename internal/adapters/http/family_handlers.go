package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
	"github.com/medispecs/medispecs-api/internal/pkg/metrics"
)

type familyRequest struct {
	FamilyMemberID string `json:"familyMemberId"`
	Name           string `json:"name"`
	Relationship   string `json:"relationship"`
	ImageBase64    string `json:"imageBase64"`
	ContentType    string `json:"imageContentType"`
}

// CreateFamilyMemberHandler enrolls a family member: photo upload plus face
// indexing in one call.
func CreateFamilyMemberHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req familyRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		member, err := deps.Family.Create(c.Context(), userID(c, deps), usecases.FamilyInput{
			FamilyMemberID: req.FamilyMemberID,
			Name:           req.Name,
			Relationship:   req.Relationship,
			ImageBase64:    req.ImageBase64,
			ContentType:    req.ContentType,
		})
		if err != nil {
			return serviceError(c, err)
		}
		metrics.FacesIndexed.Inc()
		return c.Status(201).JSON(member)
	}
}

// ListFamilyMembersHandler returns the user's family members.
func ListFamilyMembersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		members, err := deps.Family.List(c.Context(), userID(c, deps))
		if err != nil {
			return serviceError(c, err)
		}
		if members == nil {
			members = []domain.FamilyMember{}
		}
		return c.JSON(members)
	}
}

// DeleteFamilyMemberHandler removes the record, photo and indexed face.
func DeleteFamilyMemberHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Family.Delete(c.Context(), userID(c, deps), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(204)
	}
}

type recognizeRequest struct {
	ImageBase64   string  `json:"imageBase64"`
	MinConfidence float64 `json:"minConfidence"`
}

// RecognizeFaceHandler matches a photo against the enrolled faces. A miss is
// a 200 with a null match, not an error.
func RecognizeFaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req recognizeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		match, err := deps.Family.Recognize(c.Context(), userID(c, deps), req.ImageBase64, req.MinConfidence)
		if err != nil {
			metrics.RecognitionAttempts.WithLabelValues("error").Inc()
			return serviceError(c, err)
		}
		outcome := "miss"
		if match != nil {
			outcome = "match"
		}
		metrics.RecognitionAttempts.WithLabelValues(outcome).Inc()
		return c.JSON(fiber.Map{"match": match})
	}
}

// FamilyPhotoHandler streams the stored reference photo.
func FamilyPhotoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, contentType, err := deps.Family.Photo(c.Context(), userID(c, deps), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		c.Set("Content-Type", contentType)
		c.Set("Cache-Control", "private, max-age=3600")
		return c.Send(data)
	}
}
