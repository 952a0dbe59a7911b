package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// CognitiveRepo implements ports.CognitiveRepository with pgx.
type CognitiveRepo struct {
	db *DB
}

func NewCognitiveRepo(db *DB) *CognitiveRepo {
	return &CognitiveRepo{db: db}
}

func (r *CognitiveRepo) Create(ctx context.Context, e *domain.CognitiveExercise) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO cognitive_exercises (exercise_id, user_id, question, category, difficulty, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ExerciseID, e.UserID, e.Question,
		nilIfEmpty(e.Category), nilIfEmpty(e.Difficulty), e.CreatedAt, e.UpdatedAt, e.Version)
	return err
}

func (r *CognitiveRepo) List(ctx context.Context, userID string, limit int) ([]domain.CognitiveExercise, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT exercise_id, user_id, question, COALESCE(category, ''), COALESCE(difficulty, ''),
		       created_at, updated_at, version
		FROM cognitive_exercises
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exercises []domain.CognitiveExercise
	for rows.Next() {
		var e domain.CognitiveExercise
		if err := rows.Scan(
			&e.ExerciseID, &e.UserID, &e.Question, &e.Category, &e.Difficulty,
			&e.CreatedAt, &e.UpdatedAt, &e.Version,
		); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

func (r *CognitiveRepo) Get(ctx context.Context, userID, exerciseID string) (*domain.CognitiveExercise, error) {
	var e domain.CognitiveExercise
	err := r.db.Pool.QueryRow(ctx, `
		SELECT exercise_id, user_id, question, COALESCE(category, ''), COALESCE(difficulty, ''),
		       created_at, updated_at, version
		FROM cognitive_exercises
		WHERE user_id = $1 AND exercise_id = $2
	`, userID, exerciseID).Scan(
		&e.ExerciseID, &e.UserID, &e.Question, &e.Category, &e.Difficulty,
		&e.CreatedAt, &e.UpdatedAt, &e.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *CognitiveRepo) Update(ctx context.Context, e *domain.CognitiveExercise) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE cognitive_exercises
		SET question = $3, category = $4, difficulty = $5, updated_at = $6, version = $7
		WHERE user_id = $1 AND exercise_id = $2
	`, e.UserID, e.ExerciseID, e.Question,
		nilIfEmpty(e.Category), nilIfEmpty(e.Difficulty), e.UpdatedAt, e.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete is idempotent at the row level: zero affected rows is not an error.
func (r *CognitiveRepo) Delete(ctx context.Context, userID, exerciseID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM cognitive_exercises WHERE user_id = $1 AND exercise_id = $2
	`, userID, exerciseID)
	return err
}
