package usecases

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// Shared collaborator mocks for service tests. Repositories get their own
// mocks next to each test.

type mockObjectStore struct {
	putFn   func(ctx context.Context, key string, data []byte, contentType string) error
	getFn   func(ctx context.Context, key string) ([]byte, string, error)
	puts    []string
	deletes []string
}

func (m *mockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.puts = append(m.puts, key)
	if m.putFn != nil {
		return m.putFn(ctx, key, data, contentType)
	}
	return nil
}

func (m *mockObjectStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return []byte("bytes"), "image/jpeg", nil
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	return nil
}

func (m *mockObjectStore) PresignedPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return "https://store.local/put/" + key, nil
}

func (m *mockObjectStore) PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://store.local/get/" + key, nil
}

type mockCache struct {
	store map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{store: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

type mockFaceIndex struct {
	indexFn  func(ctx context.Context, externalID string, image []byte) (string, error)
	searchFn func(ctx context.Context, image []byte, minConfidence float64) (*domain.FaceHit, error)
	deleted  []string
}

func (m *mockFaceIndex) IndexFace(ctx context.Context, externalID string, image []byte) (string, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, externalID, image)
	}
	return "face-1", nil
}

func (m *mockFaceIndex) SearchFace(ctx context.Context, image []byte, minConfidence float64) (*domain.FaceHit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, image, minConfidence)
	}
	return nil, nil
}

func (m *mockFaceIndex) DeleteFace(ctx context.Context, faceID string) error {
	m.deleted = append(m.deleted, faceID)
	return nil
}

type mockPublisher struct {
	locations    int
	recognitions int
}

func (m *mockPublisher) PublishLocation(ctx context.Context, rec *domain.LocationRecord) error {
	m.locations++
	return nil
}

func (m *mockPublisher) PublishRecognition(ctx context.Context, userID string, match *domain.FaceMatch) error {
	m.recognitions++
	return nil
}

func testImage() string {
	return base64.StdEncoding.EncodeToString([]byte("not-really-a-jpeg"))
}
