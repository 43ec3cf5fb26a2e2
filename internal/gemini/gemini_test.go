package gemini

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/tryon/internal/providers"
	"google.golang.org/api/googleapi"
)

func TestExtractImage(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr error
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: providers.ErrEmptyResponse,
		},
		{
			name:    "zero candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: providers.ErrEmptyResponse,
		},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			wantErr: providers.ErrEmptyResponse,
		},
		{
			name: "text only",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("no image")}}}},
			},
			wantErr: providers.ErrNoImageData,
		},
		{
			name: "first blob wins",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{
					genai.Text("caption"),
					genai.Blob{MIMEType: "image/png", Data: []byte("first")},
					genai.Blob{MIMEType: "image/png", Data: []byte("second")},
				}}}},
			},
			want: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := extractImage(tt.resp)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(blob.Data) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, blob.Data)
			}
		})
	}
}

func TestBuildPartsOrdersImagesBeforeInstruction(t *testing.T) {
	parts := buildParts(providers.ImageRequest{
		Prompt:      "make it so",
		Images:      nil,
		AspectRatio: "1:1",
	})
	if len(parts) != 1 {
		t.Fatalf("Expected 1 part, got %d", len(parts))
	}
	text, ok := parts[0].(genai.Text)
	if !ok {
		t.Fatalf("Expected text part, got %T", parts[0])
	}
	if !strings.HasPrefix(string(text), "make it so") || !strings.Contains(string(text), "1:1") {
		t.Errorf("Expected prompt with aspect ratio, got %q", text)
	}
}

func TestTranslateError(t *testing.T) {
	apiErr := &googleapi.Error{Code: 403, Message: "permission denied"}
	err := translateError(fmt.Errorf("rpc: %w", apiErr))

	var remote *providers.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Expected RemoteError, got %T", err)
	}
	if remote.Message != "permission denied" || remote.StatusCode != 403 {
		t.Errorf("Unexpected remote error %+v", remote)
	}

	plain := translateError(errors.New("dial tcp: timeout"))
	if errors.As(plain, &remote) {
		t.Error("Transport failures should not be reported as remote errors")
	}
}
