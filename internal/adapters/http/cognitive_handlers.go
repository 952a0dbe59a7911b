package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
)

type cognitiveRequest struct {
	ExerciseID string  `json:"exerciseId"`
	Question   *string `json:"question"`
	Category   *string `json:"category"`
	Difficulty *string `json:"difficulty"`
}

func (r cognitiveRequest) input() usecases.CognitiveInput {
	return usecases.CognitiveInput{
		ExerciseID: r.ExerciseID,
		Question:   r.Question,
		Category:   r.Category,
		Difficulty: r.Difficulty,
	}
}

func CreateExerciseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req cognitiveRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		ex, err := deps.Cognitive.Create(c.Context(), userID(c, deps), req.input())
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(201).JSON(ex)
	}
}

func ListExercisesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		exercises, err := deps.Cognitive.List(c.Context(), userID(c, deps))
		if err != nil {
			return serviceError(c, err)
		}
		if exercises == nil {
			exercises = []domain.CognitiveExercise{}
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		total := len(exercises)
		if offset >= total {
			exercises = []domain.CognitiveExercise{}
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			exercises = exercises[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: exercises, Pagination: pg})
	}
}

func GetExerciseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ex, err := deps.Cognitive.Get(c.Context(), userID(c, deps), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(ex)
	}
}

func UpdateExerciseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req cognitiveRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		ex, err := deps.Cognitive.Update(c.Context(), userID(c, deps), c.Params("id"), req.input())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(ex)
	}
}

func DeleteExerciseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Cognitive.Delete(c.Context(), userID(c, deps), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(204)
	}
}
