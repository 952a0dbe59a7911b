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

const cognitiveListLimit = 200

// CognitiveService manages caregiver-authored cognitive exercises.
type CognitiveService struct {
	exercises ports.CognitiveRepository
}

func NewCognitiveService(exercises ports.CognitiveRepository) *CognitiveService {
	return &CognitiveService{exercises: exercises}
}

// CognitiveInput carries create/update fields. On update, nil pointers mean
// "leave unchanged".
type CognitiveInput struct {
	ExerciseID string
	Question   *string
	Category   *string
	Difficulty *string
}

func (s *CognitiveService) Create(ctx context.Context, userID string, in CognitiveInput) (*domain.CognitiveExercise, error) {
	question := strings.TrimSpace(deref(in.Question))
	if question == "" {
		return nil, domain.Validationf("question is required")
	}

	id := in.ExerciseID
	if id == "" {
		id = "cog_" + uuid.NewString()[:10]
	}

	ex := &domain.CognitiveExercise{
		ExerciseID: id,
		UserID:     userID,
		Question:   question,
		Category:   strings.TrimSpace(deref(in.Category)),
		Difficulty: strings.TrimSpace(deref(in.Difficulty)),
		CreatedAt:  time.Now().UTC(),
		Version:    1,
	}
	ex.UpdatedAt = ex.CreatedAt

	if err := s.exercises.Create(ctx, ex); err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	return ex, nil
}

func (s *CognitiveService) List(ctx context.Context, userID string) ([]domain.CognitiveExercise, error) {
	exercises, err := s.exercises.List(ctx, userID, cognitiveListLimit)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

func (s *CognitiveService) Get(ctx context.Context, userID, exerciseID string) (*domain.CognitiveExercise, error) {
	return s.exercises.Get(ctx, userID, exerciseID)
}

func (s *CognitiveService) Update(ctx context.Context, userID, exerciseID string, in CognitiveInput) (*domain.CognitiveExercise, error) {
	ex, err := s.exercises.Get(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(deref(in.Question)); in.Question != nil && v != "" {
		ex.Question = v
	}
	if in.Category != nil {
		ex.Category = strings.TrimSpace(*in.Category)
	}
	if in.Difficulty != nil {
		ex.Difficulty = strings.TrimSpace(*in.Difficulty)
	}

	ex.UpdatedAt = time.Now().UTC()
	ex.Version++
	if err := s.exercises.Update(ctx, ex); err != nil {
		return nil, fmt.Errorf("update exercise: %w", err)
	}
	return ex, nil
}

// Delete is idempotent: removing an absent exercise is not an error.
func (s *CognitiveService) Delete(ctx context.Context, userID, exerciseID string) error {
	if err := s.exercises.Delete(ctx, userID, exerciseID); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	return nil
}
