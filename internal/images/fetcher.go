package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
)

// ErrFetch is returned when a remote image cannot be loaded. Its text is shown
// to the user as-is.
var ErrFetch = errors.New("unable to load the image, possibly due to cross-origin restrictions; try uploading the photo locally instead")

// Fetcher retrieves remote images and turns them into data URLs
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ToDataURL returns img as a self-contained data URL. Data URLs pass through
// unchanged.
func (f *Fetcher) ToDataURL(ctx context.Context, img imagedata.Image) (imagedata.Image, error) {
	if img.IsEmbedded() {
		return img, nil
	}
	if !img.IsRemote() {
		return "", fmt.Errorf("%w: unsupported image reference", ErrFetch)
	}

	blob, err := f.download(ctx, string(img))
	if err != nil {
		slog.Error("Image download failed", "url", string(img), "err", err)
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	return imagedata.Encode(*blob), nil
}

func (f *Fetcher) download(ctx context.Context, url string) (*imagedata.Blob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, imagedata.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(imageData) > imagedata.MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", imagedata.MaxUploadBytes)
	}

	mimeType, err := imagedata.DetectImageType(imageData, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	slog.Debug("Downloaded image", "url", url, "size", len(imageData), "type", mimeType)
	return &imagedata.Blob{MIMEType: mimeType, Data: imageData}, nil
}
