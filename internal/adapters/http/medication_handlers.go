package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
)

type medicationRequest struct {
	MedicationID     string   `json:"medicationId"`
	Name             *string  `json:"name"`
	Time             *string  `json:"time"`
	Frequency        *string  `json:"frequency"`
	FrequencyDetails []string `json:"frequencyDetails"`
	Notes            *string  `json:"notes"`
	ImageBase64      string   `json:"imageBase64"`
	ContentType      string   `json:"imageContentType"`
}

func (r medicationRequest) input() usecases.MedicationInput {
	return usecases.MedicationInput{
		MedicationID:     r.MedicationID,
		Name:             r.Name,
		Time:             r.Time,
		Frequency:        r.Frequency,
		FrequencyDetails: r.FrequencyDetails,
		Notes:            r.Notes,
		ImageBase64:      r.ImageBase64,
		ContentType:      r.ContentType,
	}
}

// CreateMedicationHandler registers a medication, optionally with a photo.
func CreateMedicationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req medicationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		med, err := deps.Medications.Create(c.Context(), userID(c, deps), req.input())
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(201).JSON(med)
	}
}

// ListMedicationsHandler returns the user's medications sorted by dose time.
func ListMedicationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meds, err := deps.Medications.List(c.Context(), userID(c, deps))
		if err != nil {
			return serviceError(c, err)
		}
		if meds == nil {
			meds = []domain.Medication{}
		}
		return c.JSON(meds)
	}
}

// GetMedicationHandler returns one medication by ID.
func GetMedicationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		med, err := deps.Medications.Get(c.Context(), userID(c, deps), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(med)
	}
}

// UpdateMedicationHandler applies a partial update.
func UpdateMedicationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req medicationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		med, err := deps.Medications.Update(c.Context(), userID(c, deps), c.Params("id"), req.input())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(med)
	}
}

// DeleteMedicationHandler removes a medication and its photo.
func DeleteMedicationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Medications.Delete(c.Context(), userID(c, deps), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(204)
	}
}

// MedicationPhotoHandler streams the stored photo bytes.
func MedicationPhotoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, contentType, err := deps.Medications.Photo(c.Context(), userID(c, deps), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		c.Set("Content-Type", contentType)
		c.Set("Cache-Control", "private, max-age=3600")
		return c.Send(data)
	}
}
