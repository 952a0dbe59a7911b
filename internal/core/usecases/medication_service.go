package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/ports"
)

const medicationListLimit = 500

var validFrequencies = []string{
	domain.FrequencyDaily,
	domain.FrequencyWeekly,
	domain.FrequencyMonthly,
	domain.FrequencyAsNeeded,
}

// MedicationService handles medication CRUD plus photo storage.
type MedicationService struct {
	meds    ports.MedicationRepository
	objects ports.ObjectStore
	cache   ports.CacheService
	apiBase string
	prefix  string
}

// NewMedicationService creates a new MedicationService. apiBase is the
// public base URL used to build photo proxy links; prefix is the object key
// prefix (e.g. "medications").
func NewMedicationService(meds ports.MedicationRepository, objects ports.ObjectStore, cache ports.CacheService, apiBase, prefix string) *MedicationService {
	return &MedicationService{
		meds:    meds,
		objects: objects,
		cache:   cache,
		apiBase: strings.TrimRight(apiBase, "/"),
		prefix:  strings.Trim(prefix, "/"),
	}
}

// MedicationInput carries create/update fields. On update, nil pointers mean
// "leave unchanged".
type MedicationInput struct {
	MedicationID     string
	Name             *string
	Time             *string
	Frequency        *string
	FrequencyDetails []string
	Notes            *string
	ImageBase64      string
	ContentType      string
}

// Create validates and persists a new medication, uploading its photo first
// so a failed upload never leaves a dangling row.
func (s *MedicationService) Create(ctx context.Context, userID string, in MedicationInput) (*domain.Medication, error) {
	name := strings.TrimSpace(deref(in.Name))
	doseTime := strings.TrimSpace(deref(in.Time))
	if name == "" || doseTime == "" {
		return nil, domain.Validationf("name and time are required")
	}

	frequency := deref(in.Frequency)
	if frequency == "" {
		frequency = domain.FrequencyDaily
	}
	if !frequencyValid(frequency) {
		return nil, domain.Validationf("invalid frequency, must be one of: %s", strings.Join(validFrequencies, ", "))
	}
	if frequency == domain.FrequencyWeekly && len(in.FrequencyDetails) == 0 {
		return nil, domain.Validationf("frequencyDetails required for weekly frequency")
	}

	id := in.MedicationID
	if id == "" {
		id = "med_" + uuid.NewString()[:10]
	}

	med := &domain.Medication{
		MedicationID:     id,
		UserID:           userID,
		Name:             name,
		Time:             doseTime,
		Frequency:        frequency,
		FrequencyDetails: in.FrequencyDetails,
		Notes:            strings.TrimSpace(deref(in.Notes)),
		CreatedAt:        time.Now().UTC(),
		Version:          1,
	}
	med.UpdatedAt = med.CreatedAt

	if in.ImageBase64 != "" {
		key, err := s.uploadPhoto(ctx, userID, id, in.ImageBase64, in.ContentType)
		if err != nil {
			return nil, err
		}
		med.PhotoKey = key
	}

	if err := s.meds.Create(ctx, med); err != nil {
		// The row never existed, so drop the orphaned photo.
		if med.PhotoKey != "" {
			_ = s.objects.Delete(ctx, med.PhotoKey)
		}
		return nil, fmt.Errorf("create medication: %w", err)
	}

	s.invalidateList(ctx, userID)
	s.decorate(med)
	return med, nil
}

// List returns the user's medications sorted by dose time.
func (s *MedicationService) List(ctx context.Context, userID string) ([]domain.Medication, error) {
	cacheKey := "medications:" + userID
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var meds []domain.Medication
			if err := json.Unmarshal(data, &meds); err == nil {
				return meds, nil
			}
		}
	}

	meds, err := s.meds.List(ctx, userID, medicationListLimit)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	sort.Slice(meds, func(i, j int) bool { return meds[i].Time < meds[j].Time })
	for i := range meds {
		s.decorate(&meds[i])
	}

	if s.cache != nil {
		if data, err := json.Marshal(meds); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}
	return meds, nil
}

// Get returns one medication or domain.ErrNotFound.
func (s *MedicationService) Get(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
	med, err := s.meds.Get(ctx, userID, medicationID)
	if err != nil {
		return nil, err
	}
	s.decorate(med)
	return med, nil
}

// Update applies a partial update. A new photo replaces the old object.
func (s *MedicationService) Update(ctx context.Context, userID, medicationID string, in MedicationInput) (*domain.Medication, error) {
	med, err := s.meds.Get(ctx, userID, medicationID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(deref(in.Name)); in.Name != nil && v != "" {
		med.Name = v
	}
	if v := strings.TrimSpace(deref(in.Time)); in.Time != nil && v != "" {
		med.Time = v
	}
	if in.Frequency != nil {
		if !frequencyValid(*in.Frequency) {
			return nil, domain.Validationf("invalid frequency, must be one of: %s", strings.Join(validFrequencies, ", "))
		}
		med.Frequency = *in.Frequency
	}
	if in.FrequencyDetails != nil {
		med.FrequencyDetails = in.FrequencyDetails
	}
	if in.Notes != nil {
		med.Notes = strings.TrimSpace(*in.Notes)
	}

	if in.ImageBase64 != "" {
		oldKey := med.PhotoKey
		key, err := s.uploadPhoto(ctx, userID, medicationID, in.ImageBase64, in.ContentType)
		if err != nil {
			return nil, err
		}
		med.PhotoKey = key
		if oldKey != "" && oldKey != key {
			_ = s.objects.Delete(ctx, oldKey)
		}
	}

	med.UpdatedAt = time.Now().UTC()
	med.Version++
	if err := s.meds.Update(ctx, med); err != nil {
		return nil, fmt.Errorf("update medication: %w", err)
	}

	s.invalidateList(ctx, userID)
	s.decorate(med)
	return med, nil
}

// Delete removes the medication and, best-effort, its photo.
func (s *MedicationService) Delete(ctx context.Context, userID, medicationID string) error {
	med, err := s.meds.Get(ctx, userID, medicationID)
	if err != nil {
		return err
	}
	if err := s.meds.Delete(ctx, userID, medicationID); err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	if med.PhotoKey != "" {
		_ = s.objects.Delete(ctx, med.PhotoKey)
	}
	s.invalidateList(ctx, userID)
	return nil
}

// Photo returns the stored photo bytes and content type.
func (s *MedicationService) Photo(ctx context.Context, userID, medicationID string) ([]byte, string, error) {
	med, err := s.meds.Get(ctx, userID, medicationID)
	if err != nil {
		return nil, "", err
	}
	if med.PhotoKey == "" {
		return nil, "", domain.ErrNotFound
	}
	data, contentType, err := s.objects.Get(ctx, med.PhotoKey)
	if err != nil {
		return nil, "", domain.ErrNotFound
	}
	return data, contentType, nil
}

func (s *MedicationService) uploadPhoto(ctx context.Context, userID, medicationID, imageBase64, contentType string) (string, error) {
	data, err := decodeImage(imageBase64)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := fmt.Sprintf("%s/%s/%s.%s", s.prefix, userID, medicationID, extensionFor(contentType))
	if err := s.objects.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return key, nil
}

func (s *MedicationService) decorate(med *domain.Medication) {
	if med.PhotoKey != "" && s.apiBase != "" {
		med.PhotoURL = fmt.Sprintf("%s/v1/medications/%s/photo", s.apiBase, med.MedicationID)
	}
}

func (s *MedicationService) invalidateList(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "medications:"+userID)
	}
}

func frequencyValid(f string) bool {
	for _, v := range validFrequencies {
		if f == v {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
