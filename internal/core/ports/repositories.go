package ports

import (
	"context"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// LocationRepository persists GPS samples in date partitions. Put writes one
// record keyed by (device, day, millis); QueryPartition returns one
// partition's records oldest-first, bounded by limit.
type LocationRepository interface {
	Put(ctx context.Context, rec *domain.LocationRecord) error
	QueryPartition(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationRecord, error)
}

// MedicationRepository persists medications.
type MedicationRepository interface {
	Create(ctx context.Context, m *domain.Medication) error
	List(ctx context.Context, userID string, limit int) ([]domain.Medication, error)
	Get(ctx context.Context, userID, medicationID string) (*domain.Medication, error)
	Update(ctx context.Context, m *domain.Medication) error
	Delete(ctx context.Context, userID, medicationID string) error
}

// FamilyRepository persists family members and their face index references.
type FamilyRepository interface {
	Create(ctx context.Context, f *domain.FamilyMember) error
	List(ctx context.Context, userID string, limit int) ([]domain.FamilyMember, error)
	Get(ctx context.Context, userID, familyMemberID string) (*domain.FamilyMember, error)
	GetByFaceID(ctx context.Context, faceID string) (*domain.FamilyMember, error)
	Delete(ctx context.Context, userID, familyMemberID string) error
}

// CognitiveRepository persists cognitive exercises.
type CognitiveRepository interface {
	Create(ctx context.Context, e *domain.CognitiveExercise) error
	List(ctx context.Context, userID string, limit int) ([]domain.CognitiveExercise, error)
	Get(ctx context.Context, userID, exerciseID string) (*domain.CognitiveExercise, error)
	Update(ctx context.Context, e *domain.CognitiveExercise) error
	Delete(ctx context.Context, userID, exerciseID string) error
}

// DeviceRepository persists device registrations.
type DeviceRepository interface {
	Create(ctx context.Context, d *domain.Device) error
	List(ctx context.Context, userID string, limit int) ([]domain.Device, error)
	Get(ctx context.Context, userID, deviceID string) (*domain.Device, error)
}

// VideoRepository persists video metadata.
type VideoRepository interface {
	Create(ctx context.Context, v *domain.Video) error
	List(ctx context.Context, userID string, limit int) ([]domain.Video, error)
	Get(ctx context.Context, userID, videoID string) (*domain.Video, error)
	Delete(ctx context.Context, userID, videoID string) error
}
