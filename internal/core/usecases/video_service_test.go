package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

type mockVideoRepo struct {
	listFn  func(ctx context.Context, userID string, limit int) ([]domain.Video, error)
	getFn   func(ctx context.Context, userID, videoID string) (*domain.Video, error)
	created []*domain.Video
	deletes []string
}

func (m *mockVideoRepo) Create(ctx context.Context, v *domain.Video) error {
	m.created = append(m.created, v)
	return nil
}

func (m *mockVideoRepo) List(ctx context.Context, userID string, limit int) ([]domain.Video, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockVideoRepo) Get(ctx context.Context, userID, videoID string) (*domain.Video, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, videoID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockVideoRepo) Delete(ctx context.Context, userID, videoID string) error {
	m.deletes = append(m.deletes, videoID)
	return nil
}

func recordedAt(day string, hour, min int) time.Time {
	ts, _ := time.Parse("2006-01-02", day)
	return ts.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestVideoService_Create_DefaultsAndUploadURL(t *testing.T) {
	repo := &mockVideoRepo{}
	svc := NewVideoService(repo, &mockObjectStore{}, 0)

	video, uploadURL, err := svc.Create(context.Background(), "u1", VideoInput{VideoID: "vid_abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if video.Title != "Video Recording" || video.Status != "uploaded" || video.MimeType != "video/mp4" {
		t.Fatalf("unexpected defaults: %+v", video)
	}
	if video.ObjectKey != "videos/u1/vid_abc.mp4" {
		t.Fatalf("unexpected object key: %q", video.ObjectKey)
	}
	if uploadURL != "https://store.local/put/videos/u1/vid_abc.mp4" {
		t.Fatalf("unexpected upload url: %q", uploadURL)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one create, got %d", len(repo.created))
	}
}

func TestVideoService_Create_RejectsBadRecordedAt(t *testing.T) {
	svc := NewVideoService(&mockVideoRepo{}, &mockObjectStore{}, 0)

	_, _, err := svc.Create(context.Background(), "u1", VideoInput{RecordedAt: "yesterday"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVideoService_List_NewestFirst(t *testing.T) {
	repo := &mockVideoRepo{
		listFn: func(ctx context.Context, userID string, limit int) ([]domain.Video, error) {
			return []domain.Video{
				{VideoID: "v1", RecordedAt: recordedAt("2024-03-01", 9, 0)},
				{VideoID: "v2", RecordedAt: recordedAt("2024-03-02", 9, 0)},
			}, nil
		},
	}
	svc := NewVideoService(repo, &mockObjectStore{}, 0)

	videos, err := svc.List(context.Background(), "u1", VideoFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 2 || videos[0].VideoID != "v2" {
		t.Fatalf("expected newest first, got %+v", videos)
	}
}

func TestVideoService_List_DateAndTimeWindow(t *testing.T) {
	repo := &mockVideoRepo{
		listFn: func(ctx context.Context, userID string, limit int) ([]domain.Video, error) {
			return []domain.Video{
				{VideoID: "early", RecordedAt: recordedAt("2024-03-01", 7, 30)},
				{VideoID: "inside", RecordedAt: recordedAt("2024-03-01", 10, 15)},
				{VideoID: "late", RecordedAt: recordedAt("2024-03-01", 21, 0)},
				{VideoID: "wrong-day", RecordedAt: recordedAt("2024-03-05", 10, 15)},
			}, nil
		},
	}
	svc := NewVideoService(repo, &mockObjectStore{}, 0)

	videos, err := svc.List(context.Background(), "u1", VideoFilter{
		DateFrom: "2024-03-01",
		DateTo:   "2024-03-01",
		TimeFrom: "09:00",
		TimeTo:   "18:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 1 || videos[0].VideoID != "inside" {
		t.Fatalf("expected only the in-window clip, got %+v", videos)
	}
}

func TestVideoService_List_RejectsBadWindow(t *testing.T) {
	svc := NewVideoService(&mockVideoRepo{}, &mockObjectStore{}, 0)

	if _, err := svc.List(context.Background(), "u1", VideoFilter{TimeFrom: "9am"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.List(context.Background(), "u1", VideoFilter{DateFrom: "03/01/2024"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVideoService_PlaybackURL(t *testing.T) {
	repo := &mockVideoRepo{
		getFn: func(ctx context.Context, userID, videoID string) (*domain.Video, error) {
			return &domain.Video{VideoID: videoID, ObjectKey: "videos/u1/vid_abc.mp4"}, nil
		},
	}
	svc := NewVideoService(repo, &mockObjectStore{}, 0)

	url, err := svc.PlaybackURL(context.Background(), "u1", "vid_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://store.local/get/videos/u1/vid_abc.mp4" {
		t.Fatalf("unexpected playback url: %q", url)
	}
}

func TestVideoService_Delete_MetadataOnly(t *testing.T) {
	repo := &mockVideoRepo{}
	store := &mockObjectStore{}
	svc := NewVideoService(repo, store, 0)

	if err := svc.Delete(context.Background(), "u1", "vid_abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deletes) != 1 {
		t.Fatalf("expected metadata delete, got %v", repo.deletes)
	}
	if len(store.deletes) != 0 {
		t.Fatalf("media object must be kept, got deletes %v", store.deletes)
	}
}
