package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

type mockMedicationRepo struct {
	createFn func(ctx context.Context, m *domain.Medication) error
	getFn    func(ctx context.Context, userID, medicationID string) (*domain.Medication, error)
	listFn   func(ctx context.Context, userID string, limit int) ([]domain.Medication, error)
	updates  []*domain.Medication
	deletes  []string
}

func (m *mockMedicationRepo) Create(ctx context.Context, med *domain.Medication) error {
	if m.createFn != nil {
		return m.createFn(ctx, med)
	}
	return nil
}

func (m *mockMedicationRepo) List(ctx context.Context, userID string, limit int) ([]domain.Medication, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockMedicationRepo) Get(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, medicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockMedicationRepo) Update(ctx context.Context, med *domain.Medication) error {
	m.updates = append(m.updates, med)
	return nil
}

func (m *mockMedicationRepo) Delete(ctx context.Context, userID, medicationID string) error {
	m.deletes = append(m.deletes, medicationID)
	return nil
}

func strptr(s string) *string { return &s }

func TestMedicationService_Create_RequiresNameAndTime(t *testing.T) {
	svc := NewMedicationService(&mockMedicationRepo{}, &mockObjectStore{}, nil, "http://api.local", "medications")

	cases := []MedicationInput{
		{Time: strptr("08:00")},
		{Name: strptr("Aspirin")},
		{Name: strptr("  "), Time: strptr("08:00")},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), "u1", in); !domain.IsValidation(err) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestMedicationService_Create_FrequencyRules(t *testing.T) {
	repo := &mockMedicationRepo{}
	svc := NewMedicationService(repo, &mockObjectStore{}, nil, "http://api.local", "medications")

	_, err := svc.Create(context.Background(), "u1", MedicationInput{
		Name: strptr("Aspirin"), Time: strptr("08:00"), Frequency: strptr("hourly"),
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown frequency, got %v", err)
	}

	_, err = svc.Create(context.Background(), "u1", MedicationInput{
		Name: strptr("Aspirin"), Time: strptr("08:00"), Frequency: strptr(domain.FrequencyWeekly),
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for weekly without details, got %v", err)
	}

	med, err := svc.Create(context.Background(), "u1", MedicationInput{
		Name: strptr("Aspirin"), Time: strptr("08:00"),
		Frequency: strptr(domain.FrequencyWeekly), FrequencyDetails: []string{"mon", "thu"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med.Frequency != domain.FrequencyWeekly || len(med.FrequencyDetails) != 2 {
		t.Fatalf("unexpected medication: %+v", med)
	}
}

func TestMedicationService_Create_DefaultsToDaily(t *testing.T) {
	svc := NewMedicationService(&mockMedicationRepo{}, &mockObjectStore{}, nil, "http://api.local", "medications")

	med, err := svc.Create(context.Background(), "u1", MedicationInput{
		Name: strptr("Aspirin"), Time: strptr("08:00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med.Frequency != domain.FrequencyDaily {
		t.Fatalf("expected daily default, got %q", med.Frequency)
	}
	if med.MedicationID == "" || med.Version != 1 {
		t.Fatalf("unexpected medication: %+v", med)
	}
}

func TestMedicationService_Create_PhotoUploadedAndDecorated(t *testing.T) {
	store := &mockObjectStore{}
	svc := NewMedicationService(&mockMedicationRepo{}, store, nil, "http://api.local", "medications")

	med, err := svc.Create(context.Background(), "u1", MedicationInput{
		MedicationID: "med_abc",
		Name:         strptr("Aspirin"), Time: strptr("08:00"),
		ImageBase64: testImage(), ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.puts) != 1 || store.puts[0] != "medications/u1/med_abc.png" {
		t.Fatalf("unexpected puts: %v", store.puts)
	}
	if med.PhotoURL != "http://api.local/v1/medications/med_abc/photo" {
		t.Fatalf("unexpected photo url: %q", med.PhotoURL)
	}
}

func TestMedicationService_Create_CleansUpPhotoOnRepoFailure(t *testing.T) {
	repo := &mockMedicationRepo{
		createFn: func(ctx context.Context, m *domain.Medication) error {
			return errors.New("insert failed")
		},
	}
	store := &mockObjectStore{}
	svc := NewMedicationService(repo, store, nil, "http://api.local", "medications")

	_, err := svc.Create(context.Background(), "u1", MedicationInput{
		MedicationID: "med_abc",
		Name:         strptr("Aspirin"), Time: strptr("08:00"),
		ImageBase64: testImage(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.deletes) != 1 || store.deletes[0] != store.puts[0] {
		t.Fatalf("expected uploaded photo to be deleted, got deletes=%v puts=%v", store.deletes, store.puts)
	}
}

func TestMedicationService_List_SortsByTimeAndCaches(t *testing.T) {
	calls := 0
	repo := &mockMedicationRepo{
		listFn: func(ctx context.Context, userID string, limit int) ([]domain.Medication, error) {
			calls++
			return []domain.Medication{
				{MedicationID: "m2", Time: "20:00"},
				{MedicationID: "m1", Time: "08:00"},
			}, nil
		},
	}
	cache := newMockCache()
	svc := NewMedicationService(repo, &mockObjectStore{}, cache, "http://api.local", "medications")

	meds, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meds[0].MedicationID != "m1" || meds[1].MedicationID != "m2" {
		t.Fatalf("expected sort by time, got %+v", meds)
	}

	if _, err := svc.List(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected second list served from cache, repo calls = %d", calls)
	}
}

func TestMedicationService_Update_PartialAndVersionBump(t *testing.T) {
	repo := &mockMedicationRepo{
		getFn: func(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
			return &domain.Medication{
				MedicationID: medicationID, UserID: userID,
				Name: "Aspirin", Time: "08:00",
				Frequency: domain.FrequencyDaily, Version: 1,
			}, nil
		},
	}
	svc := NewMedicationService(repo, &mockObjectStore{}, nil, "http://api.local", "medications")

	med, err := svc.Update(context.Background(), "u1", "med_abc", MedicationInput{
		Time: strptr("09:30"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med.Name != "Aspirin" || med.Time != "09:30" {
		t.Fatalf("unexpected medication after update: %+v", med)
	}
	if med.Version != 2 {
		t.Fatalf("expected version 2, got %d", med.Version)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("expected one repo update, got %d", len(repo.updates))
	}
}

func TestMedicationService_Update_NewPhotoReplacesOld(t *testing.T) {
	repo := &mockMedicationRepo{
		getFn: func(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
			return &domain.Medication{
				MedicationID: medicationID, UserID: userID,
				Name: "Aspirin", Time: "08:00",
				Frequency: domain.FrequencyDaily,
				PhotoKey:  "medications/u1/med_abc.png",
			}, nil
		},
	}
	store := &mockObjectStore{}
	svc := NewMedicationService(repo, store, nil, "http://api.local", "medications")

	med, err := svc.Update(context.Background(), "u1", "med_abc", MedicationInput{
		ImageBase64: testImage(), ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med.PhotoKey != "medications/u1/med_abc.jpg" {
		t.Fatalf("unexpected photo key: %q", med.PhotoKey)
	}
	if len(store.deletes) != 1 || store.deletes[0] != "medications/u1/med_abc.png" {
		t.Fatalf("expected old photo deleted, got %v", store.deletes)
	}
}

func TestMedicationService_Delete_RemovesPhoto(t *testing.T) {
	repo := &mockMedicationRepo{
		getFn: func(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
			return &domain.Medication{MedicationID: medicationID, PhotoKey: "medications/u1/med_abc.jpg"}, nil
		},
	}
	store := &mockObjectStore{}
	svc := NewMedicationService(repo, store, nil, "http://api.local", "medications")

	if err := svc.Delete(context.Background(), "u1", "med_abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deletes) != 1 {
		t.Fatalf("expected repo delete, got %v", repo.deletes)
	}
	if len(store.deletes) != 1 || store.deletes[0] != "medications/u1/med_abc.jpg" {
		t.Fatalf("expected photo delete, got %v", store.deletes)
	}
}

func TestMedicationService_Photo_NotFoundWithoutKey(t *testing.T) {
	repo := &mockMedicationRepo{
		getFn: func(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
			return &domain.Medication{MedicationID: medicationID}, nil
		},
	}
	svc := NewMedicationService(repo, &mockObjectStore{}, nil, "http://api.local", "medications")

	_, _, err := svc.Photo(context.Background(), "u1", "med_abc")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecodeImage_StripsDataURLPrefix(t *testing.T) {
	data, err := decodeImage("data:image/png;base64," + testImage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "not-really") {
		t.Fatalf("unexpected decoded payload: %q", data)
	}

	if _, err := decodeImage("%%%not base64%%%"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
