package tryon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/tryon/internal/aistudio"
	"github.com/lehigh-university-libraries/tryon/internal/config"
	"github.com/lehigh-university-libraries/tryon/internal/gemini"
	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"github.com/lehigh-university-libraries/tryon/internal/providers"
)

const (
	GarmentAspectRatio   = "1:1"
	CompositeAspectRatio = "3:4"

	// The inline payloads are declared as PNG when their data URL carries no type.
	inputMIMEType  = "image/png"
	outputMIMEType = "image/png"
)

const (
	garmentFailedMessage   = "Failed to generate clothing, please check your network or prompt"
	compositeFailedMessage = "Try-on composition failed, please try again later"
)

// GenerationError is a failed generation call with the message shown to the user.
type GenerationError struct {
	Op      string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type Service struct {
	provider providers.ImageProvider
	model    string
}

func NewService(provider providers.ImageProvider, model string) *Service {
	if model == "" {
		model = config.DefaultModel
	}
	return &Service{provider: provider, model: model}
}

// NewServiceFromEnv picks the provider named in the environment.
func NewServiceFromEnv(env *config.Env) (*Service, error) {
	provider, err := NewProvider(env)
	if err != nil {
		return nil, err
	}
	return NewService(provider, env.Model), nil
}

// NewProvider builds the configured image provider.
func NewProvider(env *config.Env) (providers.ImageProvider, error) {
	switch env.Provider {
	case "aistudio", "":
		return aistudio.New(env.AIStudioBaseURL, env.APIKey), nil
	case "gemini":
		return gemini.New(env.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", env.Provider)
	}
}

// GenerateGarment renders a catalog-style product photo of the described clothing
func (s *Service) GenerateGarment(ctx context.Context, description string) (imagedata.Image, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", &GenerationError{Op: "garment", Message: garmentFailedMessage, Err: errors.New("empty description")}
	}

	blob, err := s.provider.GenerateImage(ctx, providers.ImageRequest{
		Model:       s.model,
		Prompt:      buildGarmentPrompt(description),
		AspectRatio: GarmentAspectRatio,
	})
	if err != nil {
		slog.Error("Garment generation failed", "model", s.model, "err", err)
		return "", newGenerationError("garment", err, garmentFailedMessage)
	}

	slog.Info("Garment generated", "model", s.model, "size", len(blob.Data))
	return imagedata.Encode(imagedata.Blob{MIMEType: outputMIMEType, Data: blob.Data}), nil
}

// Composite dresses the person from the first image in the clothing from the
// second. Both images must already be self-contained.
func (s *Service) Composite(ctx context.Context, person, clothes imagedata.Image) (imagedata.Image, error) {
	personBlob, err := inlineBlob(person)
	if err != nil {
		return "", &GenerationError{Op: "composite", Message: compositeFailedMessage, Err: fmt.Errorf("person image: %w", err)}
	}
	clothesBlob, err := inlineBlob(clothes)
	if err != nil {
		return "", &GenerationError{Op: "composite", Message: compositeFailedMessage, Err: fmt.Errorf("clothing image: %w", err)}
	}

	blob, err := s.provider.GenerateImage(ctx, providers.ImageRequest{
		Model:       s.model,
		Prompt:      compositePrompt,
		Images:      []imagedata.Blob{personBlob, clothesBlob},
		AspectRatio: CompositeAspectRatio,
	})
	if err != nil {
		slog.Error("Try-on composition failed", "model", s.model, "err", err)
		return "", newGenerationError("composite", err, compositeFailedMessage)
	}

	slog.Info("Try-on composed", "model", s.model, "size", len(blob.Data))
	return imagedata.Encode(imagedata.Blob{MIMEType: outputMIMEType, Data: blob.Data}), nil
}

// inlineBlob strips any data URL prefix and decodes the raw payload.
func inlineBlob(img imagedata.Image) (imagedata.Blob, error) {
	if img.IsEmbedded() {
		return imagedata.Decode(img)
	}
	if img.IsRemote() {
		return imagedata.Blob{}, errors.New("remote image must be converted before composition")
	}

	blob, err := imagedata.Decode(imagedata.FromBase64(inputMIMEType, imagedata.StripPrefix(string(img))))
	if err != nil {
		return imagedata.Blob{}, err
	}
	return blob, nil
}

func newGenerationError(op string, err error, fallback string) *GenerationError {
	message := fallback

	var remote *providers.RemoteError
	switch {
	case errors.As(err, &remote) && remote.Message != "":
		message = remote.Message
	case errors.Is(err, providers.ErrEmptyResponse):
		message = "The model returned an empty result"
	case errors.Is(err, providers.ErrNoImageData):
		message = "The model response did not contain a valid image"
	}

	return &GenerationError{Op: op, Message: message, Err: err}
}
