// Package facerec talks to the external face recognition service over its
// REST API. There is no Go SDK for the service, so this is a thin net/http
// client kept behind ports.FaceIndex.
package facerec

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// Client implements ports.FaceIndex.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

func New(baseURL, collection string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type indexRequest struct {
	Collection  string `json:"collectionId"`
	ExternalID  string `json:"externalImageId"`
	ImageBase64 string `json:"image"`
}

type indexResponse struct {
	FaceID string `json:"faceId"`
}

type searchRequest struct {
	Collection    string  `json:"collectionId"`
	ImageBase64   string  `json:"image"`
	MinConfidence float64 `json:"faceMatchThreshold"`
	MaxFaces      int     `json:"maxFaces"`
}

type searchResponse struct {
	Matches []struct {
		FaceID     string  `json:"faceId"`
		Similarity float64 `json:"similarity"`
	} `json:"faceMatches"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IndexFace registers the largest face in the image and returns its ID.
// Returns domain.ErrNoFace when the service detects no face.
func (c *Client) IndexFace(ctx context.Context, externalID string, image []byte) (string, error) {
	req := indexRequest{
		Collection:  c.collection,
		ExternalID:  externalID,
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	}
	var resp indexResponse
	if err := c.post(ctx, "/faces", req, &resp); err != nil {
		return "", err
	}
	if resp.FaceID == "" {
		return "", domain.ErrNoFace
	}
	return resp.FaceID, nil
}

// SearchFace returns the best match above minConfidence, or nil.
func (c *Client) SearchFace(ctx context.Context, image []byte, minConfidence float64) (*domain.FaceHit, error) {
	req := searchRequest{
		Collection:    c.collection,
		ImageBase64:   base64.StdEncoding.EncodeToString(image),
		MinConfidence: minConfidence,
		MaxFaces:      1,
	}
	var resp searchResponse
	if err := c.post(ctx, "/faces/search", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Matches) == 0 {
		return nil, nil
	}
	best := resp.Matches[0]
	return &domain.FaceHit{FaceID: best.FaceID, Similarity: best.Similarity}, nil
}

// DeleteFace removes a face from the collection.
func (c *Client) DeleteFace(ctx context.Context, faceID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/collections/%s/faces/%s", c.baseURL, c.collection, faceID), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete face: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete face: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("face service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("face service read: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Code == "NO_FACE_DETECTED" {
			return domain.ErrNoFace
		}
		return fmt.Errorf("face service: status %d: %s", resp.StatusCode, apiErr.Message)
	}
	return json.Unmarshal(data, out)
}
