package postgres

import (
	"context"
	"database/sql"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// LocationRepo implements ports.LocationRepository. Coordinates are stored
// as NUMERIC and read back as text so values round-trip without binary
// float drift.
type LocationRepo struct {
	db *DB
}

func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// Put writes one sample. Re-sent samples for the same (device, day, millis)
// overwrite in place.
func (r *LocationRepo) Put(ctx context.Context, rec *domain.LocationRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO locations (device_id, day, ts_ms, lat, lng, accuracy, speed, timestamp_iso)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8)
		ON CONFLICT (device_id, day, ts_ms) DO UPDATE
		SET lat = EXCLUDED.lat, lng = EXCLUDED.lng,
		    accuracy = EXCLUDED.accuracy, speed = EXCLUDED.speed,
		    timestamp_iso = EXCLUDED.timestamp_iso
	`, rec.DeviceID, rec.Day, rec.TSMillis,
		decimalArg(rec.Lat), decimalArg(rec.Lng),
		decimalArg(rec.Accuracy), decimalArg(rec.Speed),
		rec.TimestampISO)
	return err
}

// QueryPartition returns one device-day partition oldest-first.
func (r *LocationRepo) QueryPartition(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT device_id, day, ts_ms,
		       lat::text, lng::text, accuracy::text, speed::text,
		       COALESCE(timestamp_iso, '')
		FROM locations
		WHERE device_id = $1 AND day = $2
		ORDER BY ts_ms ASC
		LIMIT $3
	`, deviceID, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.LocationRecord
	for rows.Next() {
		var rec domain.LocationRecord
		var lat, lng, accuracy, speed sql.NullString
		if err := rows.Scan(
			&rec.DeviceID, &rec.Day, &rec.TSMillis,
			&lat, &lng, &accuracy, &speed,
			&rec.TimestampISO,
		); err != nil {
			return nil, err
		}
		rec.Lat = domain.Decimal(lat.String)
		rec.Lng = domain.Decimal(lng.String)
		rec.Accuracy = domain.Decimal(accuracy.String)
		rec.Speed = domain.Decimal(speed.String)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// decimalArg passes an exact decimal as text, NULL when unset.
func decimalArg(d domain.Decimal) interface{} {
	if d == "" {
		return nil
	}
	return string(d)
}
