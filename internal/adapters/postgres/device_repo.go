package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// DeviceRepo implements ports.DeviceRepository with pgx.
type DeviceRepo struct {
	db *DB
}

func NewDeviceRepo(db *DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

func (r *DeviceRepo) Create(ctx context.Context, d *domain.Device) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO devices (device_id, user_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.DeviceID, d.UserID, d.Name, d.Status, d.CreatedAt, d.UpdatedAt)
	return err
}

func (r *DeviceRepo) List(ctx context.Context, userID string, limit int) ([]domain.Device, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT device_id, user_id, name, status, created_at, updated_at
		FROM devices
		WHERE user_id = $1
		ORDER BY created_at
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(
			&d.DeviceID, &d.UserID, &d.Name, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (r *DeviceRepo) Get(ctx context.Context, userID, deviceID string) (*domain.Device, error) {
	var d domain.Device
	err := r.db.Pool.QueryRow(ctx, `
		SELECT device_id, user_id, name, status, created_at, updated_at
		FROM devices
		WHERE user_id = $1 AND device_id = $2
	`, userID, deviceID).Scan(
		&d.DeviceID, &d.UserID, &d.Name, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
