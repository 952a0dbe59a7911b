package usecases

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/ports"
)

const videoListLimit = 500

// VideoService manages recorded-clip metadata. The media bytes never pass
// through the API: uploads and playback go straight to object storage via
// presigned URLs.
type VideoService struct {
	videos    ports.VideoRepository
	objects   ports.ObjectStore
	urlExpiry time.Duration
}

func NewVideoService(videos ports.VideoRepository, objects ports.ObjectStore, urlExpiry time.Duration) *VideoService {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &VideoService{videos: videos, objects: objects, urlExpiry: urlExpiry}
}

// VideoInput carries create fields.
type VideoInput struct {
	VideoID       string
	DeviceID      string
	Title         string
	MimeType      string
	RecordedAt    string
	DurationSec   *int
	FileSizeBytes *int64
}

// VideoFilter narrows List by recording date and time-of-day.
type VideoFilter struct {
	DateFrom string // YYYY-MM-DD or ISO timestamp
	DateTo   string
	TimeFrom string // HH:MM
	TimeTo   string
}

// Create registers metadata for a clip and returns it together with a
// presigned upload URL for the media object.
func (s *VideoService) Create(ctx context.Context, userID string, in VideoInput) (*domain.Video, string, error) {
	id := in.VideoID
	if id == "" {
		id = "vid_" + uuid.NewString()[:10]
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Video Recording"
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	recordedAt := time.Now().UTC()
	if in.RecordedAt != "" {
		ts, err := parseVideoTimestamp(in.RecordedAt)
		if err != nil {
			return nil, "", domain.Validationf("invalid recordedAt: %s", in.RecordedAt)
		}
		recordedAt = ts
	}

	video := &domain.Video{
		VideoID:       id,
		UserID:        userID,
		DeviceID:      in.DeviceID,
		Title:         title,
		ObjectKey:     fmt.Sprintf("videos/%s/%s.%s", userID, id, videoExtension(mimeType)),
		MimeType:      mimeType,
		Status:        "uploaded",
		RecordedAt:    recordedAt,
		DurationSec:   in.DurationSec,
		FileSizeBytes: in.FileSizeBytes,
		CreatedAt:     time.Now().UTC(),
		Version:       1,
	}
	video.UpdatedAt = video.CreatedAt

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, "", fmt.Errorf("create video: %w", err)
	}

	uploadURL, err := s.objects.PresignedPut(ctx, video.ObjectKey, mimeType, s.urlExpiry)
	if err != nil {
		return nil, "", fmt.Errorf("presign upload: %w", err)
	}
	return video, uploadURL, nil
}

// List returns the user's videos newest-first, optionally windowed by
// recording date and time-of-day.
func (s *VideoService) List(ctx context.Context, userID string, filter VideoFilter) ([]domain.Video, error) {
	videos, err := s.videos.List(ctx, userID, videoListLimit)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	filtered, err := applyVideoFilter(videos, filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].RecordedAt.After(filtered[j].RecordedAt)
	})
	return filtered, nil
}

func (s *VideoService) Get(ctx context.Context, userID, videoID string) (*domain.Video, error) {
	return s.videos.Get(ctx, userID, videoID)
}

// PlaybackURL returns a presigned GET link for the stored media.
func (s *VideoService) PlaybackURL(ctx context.Context, userID, videoID string) (string, error) {
	video, err := s.videos.Get(ctx, userID, videoID)
	if err != nil {
		return "", err
	}
	url, err := s.objects.PresignedGet(ctx, video.ObjectKey, s.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("presign playback: %w", err)
	}
	return url, nil
}

// Delete removes the metadata row only. Media objects are kept.
func (s *VideoService) Delete(ctx context.Context, userID, videoID string) error {
	if err := s.videos.Delete(ctx, userID, videoID); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	return nil
}

func applyVideoFilter(videos []domain.Video, filter VideoFilter) ([]domain.Video, error) {
	var dateFrom, dateTo time.Time
	var err error
	if filter.DateFrom != "" {
		if dateFrom, err = parseVideoTimestamp(filter.DateFrom); err != nil {
			return nil, domain.Validationf("invalid dateFrom: %s", filter.DateFrom)
		}
	}
	if filter.DateTo != "" {
		if dateTo, err = parseVideoTimestamp(filter.DateTo); err != nil {
			return nil, domain.Validationf("invalid dateTo: %s", filter.DateTo)
		}
		// A bare date upper bound means the whole day.
		if len(filter.DateTo) == len("2006-01-02") {
			dateTo = dateTo.Add(24*time.Hour - time.Nanosecond)
		}
	}

	timeFrom, err := parseMinuteOfDay(filter.TimeFrom)
	if err != nil {
		return nil, domain.Validationf("invalid timeFrom: %s", filter.TimeFrom)
	}
	timeTo, err := parseMinuteOfDay(filter.TimeTo)
	if err != nil {
		return nil, domain.Validationf("invalid timeTo: %s", filter.TimeTo)
	}

	out := make([]domain.Video, 0, len(videos))
	for _, v := range videos {
		ts := v.RecordedAt.UTC()
		if !dateFrom.IsZero() && ts.Before(dateFrom) {
			continue
		}
		if !dateTo.IsZero() && ts.After(dateTo) {
			continue
		}
		minute := ts.Hour()*60 + ts.Minute()
		if timeFrom >= 0 && minute < timeFrom {
			continue
		}
		if timeTo >= 0 && minute > timeTo {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func parseVideoTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// parseMinuteOfDay parses HH:MM into minutes since midnight, -1 when unset.
func parseMinuteOfDay(s string) (int, error) {
	if s == "" {
		return -1, nil
	}
	ts, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return ts.Hour()*60 + ts.Minute(), nil
}

func videoExtension(mimeType string) string {
	ct := strings.ToLower(mimeType)
	switch {
	case strings.Contains(ct, "webm"):
		return "webm"
	case strings.Contains(ct, "quicktime"), strings.Contains(ct, "mov"):
		return "mov"
	default:
		return "mp4"
	}
}
