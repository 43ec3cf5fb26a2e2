package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
)

var (
	// ErrEmptyResponse means the first candidate carried no content parts.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrNoImageData means content parts were present but none held an image.
	ErrNoImageData = errors.New("model response did not contain image data")
)

// ImageRequest is a single image generation call
type ImageRequest struct {
	Model       string
	Prompt      string
	Images      []imagedata.Blob
	AspectRatio string
}

// ImageProvider defines the interface for an image generation backend
type ImageProvider interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*imagedata.Blob, error)
}

// RemoteError is a failure reported by the model API itself.
type RemoteError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
