package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"github.com/lehigh-university-libraries/tryon/internal/providers"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const providerName = "gemini"

// Gemini is a provider for Google Gemini backed by the generative-ai-go SDK
type Gemini struct {
	apiKey string
	opts   []option.ClientOption
}

// New returns a new Gemini provider
func New(apiKey string, opts ...option.ClientOption) *Gemini {
	return &Gemini{apiKey: apiKey, opts: opts}
}

// GenerateImage generates an image from the given prompt and reference images.
// The SDK exposes no image configuration, so the aspect ratio travels in the
// instruction text.
func (g *Gemini) GenerateImage(ctx context.Context, req providers.ImageRequest) (*imagedata.Blob, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)

	resp, err := model.GenerateContent(ctx, buildParts(req)...)
	if err != nil {
		return nil, translateError(err)
	}

	return extractImage(resp)
}

func buildParts(req providers.ImageRequest) []genai.Part {
	parts := make([]genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	prompt := req.Prompt
	if req.AspectRatio != "" {
		prompt += fmt.Sprintf("\n\nOutput aspect ratio: %s.", req.AspectRatio)
	}
	return append(parts, genai.Text(prompt))
}

func extractImage(resp *genai.GenerateContentResponse) (*imagedata.Blob, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, providers.ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, providers.ErrEmptyResponse
	}

	for _, part := range candidate.Content.Parts {
		if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
			return &imagedata.Blob{MIMEType: blob.MIMEType, Data: blob.Data}, nil
		}
	}

	return nil, providers.ErrNoImageData
}

func translateError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", providers.ErrEmptyResponse, blocked)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &providers.RemoteError{
			Provider:   providerName,
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	return fmt.Errorf("failed to generate content: %w", err)
}
