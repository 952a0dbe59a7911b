package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// VideoRepo implements ports.VideoRepository with pgx.
type VideoRepo struct {
	db *DB
}

func NewVideoRepo(db *DB) *VideoRepo {
	return &VideoRepo{db: db}
}

func (r *VideoRepo) Create(ctx context.Context, v *domain.Video) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO videos (video_id, user_id, device_id, title, object_key, mime_type, status, recorded_at, duration_sec, file_size_bytes, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, v.VideoID, v.UserID, nilIfEmpty(v.DeviceID), v.Title, v.ObjectKey, v.MimeType,
		v.Status, v.RecordedAt, v.DurationSec, v.FileSizeBytes, v.CreatedAt, v.UpdatedAt, v.Version)
	return err
}

func (r *VideoRepo) List(ctx context.Context, userID string, limit int) ([]domain.Video, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT video_id, user_id, COALESCE(device_id, ''), title, object_key, mime_type, status,
		       recorded_at, duration_sec, file_size_bytes, created_at, updated_at, version
		FROM videos
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(
			&v.VideoID, &v.UserID, &v.DeviceID, &v.Title, &v.ObjectKey, &v.MimeType, &v.Status,
			&v.RecordedAt, &v.DurationSec, &v.FileSizeBytes, &v.CreatedAt, &v.UpdatedAt, &v.Version,
		); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepo) Get(ctx context.Context, userID, videoID string) (*domain.Video, error) {
	var v domain.Video
	err := r.db.Pool.QueryRow(ctx, `
		SELECT video_id, user_id, COALESCE(device_id, ''), title, object_key, mime_type, status,
		       recorded_at, duration_sec, file_size_bytes, created_at, updated_at, version
		FROM videos
		WHERE user_id = $1 AND video_id = $2
	`, userID, videoID).Scan(
		&v.VideoID, &v.UserID, &v.DeviceID, &v.Title, &v.ObjectKey, &v.MimeType, &v.Status,
		&v.RecordedAt, &v.DurationSec, &v.FileSizeBytes, &v.CreatedAt, &v.UpdatedAt, &v.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VideoRepo) Delete(ctx context.Context, userID, videoID string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM videos WHERE user_id = $1 AND video_id = $2
	`, userID, videoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
