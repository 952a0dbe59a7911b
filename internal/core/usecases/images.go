package usecases

import (
	"encoding/base64"
	"strings"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// decodeImage decodes a base64 image payload, tolerating a data-URL prefix
// ("data:image/jpeg;base64,...").
func decodeImage(imageBase64 string) ([]byte, error) {
	if i := strings.Index(imageBase64, ","); i >= 0 {
		imageBase64 = imageBase64[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, domain.Validationf("invalid base64 image: %v", err)
	}
	return data, nil
}

// extensionFor maps a content type to a file extension, defaulting to jpg.
func extensionFor(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "heic"):
		return "heic"
	default:
		return "jpg"
	}
}
