package domain

import (
	"time"
)

// Medication is a scheduled medication entry, optionally with a photo held
// in object storage.
type Medication struct {
	MedicationID     string    `json:"medicationId"`
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	Time             string    `json:"time"` // HH:MM, local to the user
	Frequency        string    `json:"frequency"`
	FrequencyDetails []string  `json:"frequencyDetails,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	PhotoKey         string    `json:"photoS3Key,omitempty"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Version          int       `json:"version"`
}

// Medication frequencies accepted by Create/Update.
const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyMonthly  = "monthly"
	FrequencyAsNeeded = "as-needed"
)

// FamilyMember is a person the user should recognize, with an indexed
// reference face.
type FamilyMember struct {
	FamilyMemberID string    `json:"familyMemberId"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Relationship   string    `json:"relationship"`
	PhotoKey       string    `json:"photoS3Key,omitempty"`
	PhotoURL       string    `json:"photoUrl,omitempty"`
	FaceID         string    `json:"faceId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FaceHit is a raw match from the face index.
type FaceHit struct {
	FaceID     string  `json:"faceId"`
	Similarity float64 `json:"similarity"`
}

// FaceMatch is a recognition result: the matched face plus the family member
// it resolves to, if any.
type FaceMatch struct {
	FaceID     string        `json:"faceId"`
	Similarity float64       `json:"similarity"`
	Member     *FamilyMember `json:"metadata"`
}

// CognitiveExercise is a memory/quiz prompt authored by a caregiver.
type CognitiveExercise struct {
	ExerciseID string    `json:"exerciseId"`
	UserID     string    `json:"userId"`
	Question   string    `json:"question"`
	Category   string    `json:"category,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Version    int       `json:"version"`
}

// Device is a registered tracking device.
type Device struct {
	DeviceID  string    `json:"deviceId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Video is recorded-clip metadata; the media itself lives in object storage
// and moves via presigned URLs.
type Video struct {
	VideoID       string    `json:"videoId"`
	UserID        string    `json:"userId"`
	DeviceID      string    `json:"deviceId"`
	Title         string    `json:"title"`
	ObjectKey     string    `json:"objectKey"`
	MimeType      string    `json:"mimeType"`
	Status        string    `json:"status"` // uploaded | processing | ready | error
	RecordedAt    time.Time `json:"recordedAt"`
	DurationSec   *int      `json:"durationSec,omitempty"`
	FileSizeBytes *int64    `json:"fileSizeBytes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Version       int       `json:"version"`
}
