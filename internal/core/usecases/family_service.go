package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/ports"
)

const (
	familyListLimit          = 200
	defaultMinConfidence     = 85
	faceRecognitionCollector = "face recognition"
)

// FamilyService manages family members and the face recognition pipeline:
// photo upload, face indexing, and face-to-identity resolution.
type FamilyService struct {
	family    ports.FamilyRepository
	objects   ports.ObjectStore
	faces     ports.FaceIndex
	publisher ports.EventPublisher
	apiBase   string
	prefix    string
}

// NewFamilyService creates a new FamilyService. publisher may be nil.
func NewFamilyService(family ports.FamilyRepository, objects ports.ObjectStore, faces ports.FaceIndex, publisher ports.EventPublisher, apiBase, prefix string) *FamilyService {
	return &FamilyService{
		family:    family,
		objects:   objects,
		faces:     faces,
		publisher: publisher,
		apiBase:   strings.TrimRight(apiBase, "/"),
		prefix:    strings.Trim(prefix, "/"),
	}
}

// FamilyInput carries create fields.
type FamilyInput struct {
	FamilyMemberID string
	Name           string
	Relationship   string
	ImageBase64    string
	ContentType    string
}

// Create runs the enrollment pipeline: upload photo, index the face, persist
// the record. If indexing finds no face or fails, the uploaded photo is
// removed again so storage and the face index stay consistent; nothing is
// persisted.
func (s *FamilyService) Create(ctx context.Context, userID string, in FamilyInput) (*domain.FamilyMember, error) {
	name := strings.TrimSpace(in.Name)
	relationship := strings.TrimSpace(in.Relationship)
	if name == "" || relationship == "" || in.ImageBase64 == "" {
		return nil, domain.Validationf("name, relationship, imageBase64 are required")
	}

	image, err := decodeImage(in.ImageBase64)
	if err != nil {
		return nil, err
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	id := in.FamilyMemberID
	if id == "" {
		id = "fam_" + uuid.NewString()[:10]
	}
	key := fmt.Sprintf("%s/%s/%s.%s", s.prefix, userID, id, extensionFor(contentType))

	if err := s.objects.Put(ctx, key, image, contentType); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	faceID, err := s.faces.IndexFace(ctx, userID+":"+id, image)
	if err != nil {
		// Compensate: the photo must not outlive a failed enrollment.
		_ = s.objects.Delete(ctx, key)
		if errors.Is(err, domain.ErrNoFace) {
			return nil, domain.Validationf("no face detected in image")
		}
		return nil, &domain.UpstreamError{Service: faceRecognitionCollector, Err: err}
	}

	member := &domain.FamilyMember{
		FamilyMemberID: id,
		UserID:         userID,
		Name:           name,
		Relationship:   relationship,
		PhotoKey:       key,
		FaceID:         faceID,
		CreatedAt:      time.Now().UTC(),
	}
	member.UpdatedAt = member.CreatedAt

	if err := s.family.Create(ctx, member); err != nil {
		_ = s.objects.Delete(ctx, key)
		_ = s.faces.DeleteFace(ctx, faceID)
		return nil, fmt.Errorf("create family member: %w", err)
	}

	s.decorate(member)
	return member, nil
}

// List returns the user's family members.
func (s *FamilyService) List(ctx context.Context, userID string) ([]domain.FamilyMember, error) {
	members, err := s.family.List(ctx, userID, familyListLimit)
	if err != nil {
		return nil, fmt.Errorf("list family: %w", err)
	}
	for i := range members {
		s.decorate(&members[i])
	}
	return members, nil
}

// Delete removes the record, then best-effort cleans up the photo and the
// indexed face.
func (s *FamilyService) Delete(ctx context.Context, userID, familyMemberID string) error {
	member, err := s.family.Get(ctx, userID, familyMemberID)
	if err != nil {
		return err
	}
	if err := s.family.Delete(ctx, userID, familyMemberID); err != nil {
		return fmt.Errorf("delete family member: %w", err)
	}
	if member.PhotoKey != "" {
		_ = s.objects.Delete(ctx, member.PhotoKey)
	}
	if member.FaceID != "" {
		_ = s.faces.DeleteFace(ctx, member.FaceID)
	}
	return nil
}

// Recognize searches the face index for the best match in an image and
// resolves the face to a stored family member. A nil result means no match
// above the confidence threshold.
func (s *FamilyService) Recognize(ctx context.Context, userID, imageBase64 string, minConfidence float64) (*domain.FaceMatch, error) {
	if imageBase64 == "" {
		return nil, domain.Validationf("imageBase64 is required")
	}
	image, err := decodeImage(imageBase64)
	if err != nil {
		return nil, err
	}
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}

	hit, err := s.faces.SearchFace(ctx, image, minConfidence)
	if err != nil {
		return nil, &domain.UpstreamError{Service: faceRecognitionCollector, Err: err}
	}
	if hit == nil {
		return nil, nil
	}

	match := &domain.FaceMatch{FaceID: hit.FaceID, Similarity: hit.Similarity}
	member, err := s.family.GetByFaceID(ctx, hit.FaceID)
	switch {
	case err == nil:
		s.decorate(member)
		match.Member = member
	case errors.Is(err, domain.ErrNotFound):
		// Face known to the index but no longer in the store: report the
		// raw match with no identity attached.
	default:
		return nil, fmt.Errorf("resolve face %s: %w", hit.FaceID, err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishRecognition(ctx, userID, match)
	}
	return match, nil
}

// Photo returns the stored reference photo bytes and content type.
func (s *FamilyService) Photo(ctx context.Context, userID, familyMemberID string) ([]byte, string, error) {
	member, err := s.family.Get(ctx, userID, familyMemberID)
	if err != nil {
		return nil, "", err
	}
	if member.PhotoKey == "" {
		return nil, "", domain.ErrNotFound
	}
	data, contentType, err := s.objects.Get(ctx, member.PhotoKey)
	if err != nil {
		return nil, "", domain.ErrNotFound
	}
	return data, contentType, nil
}

func (s *FamilyService) decorate(member *domain.FamilyMember) {
	if member.PhotoKey != "" && s.apiBase != "" {
		member.PhotoURL = fmt.Sprintf("%s/v1/family/%s/photo", s.apiBase, member.FamilyMemberID)
	}
}
