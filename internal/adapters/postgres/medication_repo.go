package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// MedicationRepo implements ports.MedicationRepository with pgx.
type MedicationRepo struct {
	db *DB
}

func NewMedicationRepo(db *DB) *MedicationRepo {
	return &MedicationRepo{db: db}
}

func (r *MedicationRepo) Create(ctx context.Context, m *domain.Medication) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO medications (medication_id, user_id, name, dose_time, frequency, frequency_details, notes, photo_key, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, m.MedicationID, m.UserID, m.Name, m.Time, m.Frequency, m.FrequencyDetails,
		nilIfEmpty(m.Notes), nilIfEmpty(m.PhotoKey), m.CreatedAt, m.UpdatedAt, m.Version)
	return err
}

func (r *MedicationRepo) List(ctx context.Context, userID string, limit int) ([]domain.Medication, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT medication_id, user_id, name, dose_time, frequency,
		       COALESCE(frequency_details, '{}'), COALESCE(notes, ''), COALESCE(photo_key, ''),
		       created_at, updated_at, version
		FROM medications
		WHERE user_id = $1
		ORDER BY dose_time, medication_id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []domain.Medication
	for rows.Next() {
		var m domain.Medication
		if err := rows.Scan(
			&m.MedicationID, &m.UserID, &m.Name, &m.Time, &m.Frequency,
			&m.FrequencyDetails, &m.Notes, &m.PhotoKey,
			&m.CreatedAt, &m.UpdatedAt, &m.Version,
		); err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (r *MedicationRepo) Get(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
	var m domain.Medication
	err := r.db.Pool.QueryRow(ctx, `
		SELECT medication_id, user_id, name, dose_time, frequency,
		       COALESCE(frequency_details, '{}'), COALESCE(notes, ''), COALESCE(photo_key, ''),
		       created_at, updated_at, version
		FROM medications
		WHERE user_id = $1 AND medication_id = $2
	`, userID, medicationID).Scan(
		&m.MedicationID, &m.UserID, &m.Name, &m.Time, &m.Frequency,
		&m.FrequencyDetails, &m.Notes, &m.PhotoKey,
		&m.CreatedAt, &m.UpdatedAt, &m.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MedicationRepo) Update(ctx context.Context, m *domain.Medication) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE medications
		SET name = $3, dose_time = $4, frequency = $5, frequency_details = $6,
		    notes = $7, photo_key = $8, updated_at = $9, version = $10
		WHERE user_id = $1 AND medication_id = $2
	`, m.UserID, m.MedicationID, m.Name, m.Time, m.Frequency, m.FrequencyDetails,
		nilIfEmpty(m.Notes), nilIfEmpty(m.PhotoKey), m.UpdatedAt, m.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MedicationRepo) Delete(ctx context.Context, userID, medicationID string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM medications WHERE user_id = $1 AND medication_id = $2
	`, userID, medicationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
