package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// FamilyRepo implements ports.FamilyRepository with pgx.
type FamilyRepo struct {
	db *DB
}

func NewFamilyRepo(db *DB) *FamilyRepo {
	return &FamilyRepo{db: db}
}

func (r *FamilyRepo) Create(ctx context.Context, f *domain.FamilyMember) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO family_members (family_member_id, user_id, name, relationship, photo_key, face_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, f.FamilyMemberID, f.UserID, f.Name, f.Relationship,
		nilIfEmpty(f.PhotoKey), nilIfEmpty(f.FaceID), f.CreatedAt, f.UpdatedAt)
	return err
}

func (r *FamilyRepo) List(ctx context.Context, userID string, limit int) ([]domain.FamilyMember, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT family_member_id, user_id, name, relationship,
		       COALESCE(photo_key, ''), COALESCE(face_id, ''), created_at, updated_at
		FROM family_members
		WHERE user_id = $1
		ORDER BY name
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.FamilyMember
	for rows.Next() {
		var f domain.FamilyMember
		if err := rows.Scan(
			&f.FamilyMemberID, &f.UserID, &f.Name, &f.Relationship,
			&f.PhotoKey, &f.FaceID, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, f)
	}
	return members, rows.Err()
}

func (r *FamilyRepo) Get(ctx context.Context, userID, familyMemberID string) (*domain.FamilyMember, error) {
	return r.getOne(ctx, `
		SELECT family_member_id, user_id, name, relationship,
		       COALESCE(photo_key, ''), COALESCE(face_id, ''), created_at, updated_at
		FROM family_members
		WHERE user_id = $1 AND family_member_id = $2
	`, userID, familyMemberID)
}

// GetByFaceID resolves a face index hit back to the registered person.
func (r *FamilyRepo) GetByFaceID(ctx context.Context, faceID string) (*domain.FamilyMember, error) {
	return r.getOne(ctx, `
		SELECT family_member_id, user_id, name, relationship,
		       COALESCE(photo_key, ''), COALESCE(face_id, ''), created_at, updated_at
		FROM family_members
		WHERE face_id = $1
	`, faceID)
}

func (r *FamilyRepo) Delete(ctx context.Context, userID, familyMemberID string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM family_members WHERE user_id = $1 AND family_member_id = $2
	`, userID, familyMemberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FamilyRepo) getOne(ctx context.Context, query string, args ...interface{}) (*domain.FamilyMember, error) {
	var f domain.FamilyMember
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&f.FamilyMemberID, &f.UserID, &f.Name, &f.Relationship,
		&f.PhotoKey, &f.FaceID, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
