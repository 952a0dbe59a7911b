package ports

import (
	"context"
	"time"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLocation(ctx context.Context, rec *domain.LocationRecord) error
	PublishRecognition(ctx context.Context, userID string, match *domain.FaceMatch) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ObjectStore stores photos and video files.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (data []byte, contentType string, err error)
	Delete(ctx context.Context, key string) error
	PresignedPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// FaceIndex is the external face recognition collaborator. IndexFace returns
// domain.ErrNoFace (wrapped) when the image contains no detectable face.
type FaceIndex interface {
	IndexFace(ctx context.Context, externalID string, image []byte) (faceID string, err error)
	SearchFace(ctx context.Context, image []byte, minConfidence float64) (*domain.FaceHit, error)
	DeleteFace(ctx context.Context, faceID string) error
}
