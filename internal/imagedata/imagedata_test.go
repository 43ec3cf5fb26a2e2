package imagedata

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fakePNG(size int) []byte {
	data := make([]byte, size)
	copy(data, pngHeader)
	return data
}

func TestReadUpload(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		size     int64
		declared string
		wantErr  error
		wantMIME string
	}{
		{
			name:     "small png",
			data:     fakePNG(2 * 1000 * 1000),
			size:     2 * 1000 * 1000,
			wantMIME: "image/png",
		},
		{
			name:     "exactly at limit",
			data:     fakePNG(MaxUploadBytes),
			size:     MaxUploadBytes,
			wantMIME: "image/png",
		},
		{
			name:    "declared size over limit",
			data:    fakePNG(10),
			size:    6 * 1000 * 1000,
			wantErr: ErrTooLarge,
		},
		{
			name:    "understated size",
			data:    fakePNG(MaxUploadBytes + 1),
			size:    100,
			wantErr: ErrTooLarge,
		},
		{
			name:     "falls back to declared type",
			data:     []byte("not sniffable"),
			size:     13,
			declared: "image/heic",
			wantMIME: "image/heic",
		},
		{
			name:     "rejects non-image",
			data:     []byte("hello world"),
			size:     11,
			declared: "text/plain",
			wantErr:  ErrNotImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ReadUpload(bytes.NewReader(tt.data), tt.size, tt.declared)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				if img != "" {
					t.Errorf("Expected no image on error, got %d bytes", len(img))
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !img.IsEmbedded() {
				t.Fatalf("Expected data URL, got prefix %q", string(img)[:10])
			}

			blob, err := Decode(img)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if blob.MIMEType != tt.wantMIME {
				t.Errorf("Expected MIME %s, got %s", tt.wantMIME, blob.MIMEType)
			}
			if !bytes.Equal(blob.Data, tt.data) {
				t.Error("Decoded bytes differ from upload")
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	inputs := []Image{
		"https://example.com/a.png",
		"data:image/png;base64",
		"data:image/png,plain",
		"data:image/png;base64,!!!",
	}
	for _, in := range inputs {
		if _, err := Decode(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q): expected ErrMalformed, got %v", in, err)
		}
	}
}

func TestStripPrefix(t *testing.T) {
	tests := map[string]string{
		"data:image/png;base64,AAAA": "AAAA",
		"AAAA":                       "AAAA",
		"data:image/png;base64,":     "data:image/png;base64,",
	}
	for in, want := range tests {
		if got := StripPrefix(in); got != want {
			t.Errorf("StripPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImageKinds(t *testing.T) {
	if !Image("data:image/png;base64,AA==").IsEmbedded() {
		t.Error("Expected data URL to be embedded")
	}
	if !Image("https://images.example.com/p.jpg").IsRemote() {
		t.Error("Expected https URL to be remote")
	}
	if !Image("  ").IsEmpty() {
		t.Error("Expected blank image to be empty")
	}
	if got := FromBase64("", "QUJD"); !strings.HasPrefix(string(got), "data:image/png;base64,") {
		t.Errorf("Expected default MIME type, got %s", got)
	}
}
