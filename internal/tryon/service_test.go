package tryon

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/tryon/internal/config"
	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"github.com/lehigh-university-libraries/tryon/internal/providers"
)

type fakeProvider struct {
	requests []providers.ImageRequest
	blob     *imagedata.Blob
	err      error
}

func (f *fakeProvider) GenerateImage(ctx context.Context, req providers.ImageRequest) (*imagedata.Blob, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.blob, nil
}

func TestGenerateGarment(t *testing.T) {
	provider := &fakeProvider{blob: &imagedata.Blob{MIMEType: "image/jpeg", Data: []byte("shirt")}}
	svc := NewService(provider, "")

	img, err := svc.GenerateGarment(context.Background(), "  red linen shirt ")
	if err != nil {
		t.Fatalf("GenerateGarment failed: %v", err)
	}
	if img != imagedata.Encode(imagedata.Blob{MIMEType: "image/png", Data: []byte("shirt")}) {
		t.Errorf("Expected png data URL, got %s", img)
	}

	req := provider.requests[0]
	if req.Model != config.DefaultModel {
		t.Errorf("Expected default model, got %s", req.Model)
	}
	if req.AspectRatio != "1:1" {
		t.Errorf("Expected 1:1, got %s", req.AspectRatio)
	}
	if !strings.Contains(req.Prompt, "red linen shirt.") || !strings.Contains(req.Prompt, "Pure white background") {
		t.Errorf("Unexpected prompt %q", req.Prompt)
	}
	if len(req.Images) != 0 {
		t.Errorf("Expected no input images, got %d", len(req.Images))
	}
}

func TestCompositeSendsBothImages(t *testing.T) {
	provider := &fakeProvider{blob: &imagedata.Blob{Data: []byte("look")}}
	svc := NewService(provider, "custom-model")

	person := imagedata.Encode(imagedata.Blob{MIMEType: "image/jpeg", Data: []byte("person")})
	clothes := imagedata.Image("Y2xvdGhlcw==") // bare payload, no prefix

	img, err := svc.Composite(context.Background(), person, clothes)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if !strings.HasPrefix(string(img), "data:image/png;base64,") {
		t.Errorf("Expected png data URL, got %s", img)
	}

	req := provider.requests[0]
	if req.Model != "custom-model" || req.AspectRatio != "3:4" {
		t.Errorf("Unexpected request %s %s", req.Model, req.AspectRatio)
	}
	if len(req.Images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(req.Images))
	}
	if string(req.Images[0].Data) != "person" || req.Images[0].MIMEType != "image/jpeg" {
		t.Errorf("Expected person first, got %+v", req.Images[0])
	}
	if string(req.Images[1].Data) != "clothes" || req.Images[1].MIMEType != "image/png" {
		t.Errorf("Expected clothes second, got %+v", req.Images[1])
	}
	if !strings.Contains(req.Prompt, "IDENTITY-PRESERVED") {
		t.Errorf("Expected try-on directive, got %q", req.Prompt)
	}
}

func TestCompositeRejectsRemoteImages(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, "")

	_, err := svc.Composite(context.Background(), "https://example.com/p.jpg", "data:image/png;base64,QQ==")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected GenerationError, got %v", err)
	}
	if len(provider.requests) != 0 {
		t.Error("Provider should not be called with unresolved images")
	}
}

func TestGenerationErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		wantIs  error
	}{
		{
			name:    "remote message surfaces",
			err:     &providers.RemoteError{Provider: "aistudio", StatusCode: 429, Message: "Resource has been exhausted"},
			wantMsg: "Resource has been exhausted",
		},
		{
			name:    "remote without message falls back",
			err:     &providers.RemoteError{Provider: "aistudio", StatusCode: 500},
			wantMsg: compositeFailedMessage,
		},
		{
			name:    "empty response",
			err:     providers.ErrEmptyResponse,
			wantMsg: "The model returned an empty result",
			wantIs:  providers.ErrEmptyResponse,
		},
		{
			name:    "no image data",
			err:     providers.ErrNoImageData,
			wantMsg: "The model response did not contain a valid image",
			wantIs:  providers.ErrNoImageData,
		},
		{
			name:    "transport failure is generic",
			err:     errors.New("connection reset by peer"),
			wantMsg: compositeFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeProvider{err: tt.err}, "")
			_, err := svc.Composite(context.Background(), "data:image/png;base64,QQ==", "data:image/png;base64,Qg==")
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Expected %q, got %q", tt.wantMsg, err.Error())
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Expected error to wrap %v", tt.wantIs)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"aistudio", "gemini", ""} {
		if _, err := NewProvider(&config.Env{Provider: name}); err != nil {
			t.Errorf("Provider %q: unexpected error %v", name, err)
		}
	}
	if _, err := NewProvider(&config.Env{Provider: "dall-e"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
