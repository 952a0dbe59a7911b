package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a missing entity. Repositories return it (wrapped) so
// the HTTP layer can map it to 404 without knowing about pgx.
var ErrNotFound = errors.New("not found")

// ErrNoFace signals that the face collaborator found no face in an image.
var ErrNoFace = errors.New("no face detected in image")

// ValidationError is a malformed or missing required input. It is terminal
// for the request and surfaces as 400 with its message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UpstreamError wraps a failure of an external collaborator (the face
// recognition service) that is neither the caller's fault nor ours.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
