// Package imagedata handles self-contained image representations (data URLs)
// and the upload boundary that produces them.
package imagedata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxUploadBytes is the largest accepted upload (5 MiB).
const MaxUploadBytes = 5 * 1024 * 1024

// DefaultMIMEType is assumed for payloads that carry no type.
const DefaultMIMEType = "image/png"

var (
	ErrTooLarge  = errors.New("image is too large, please upload an image within 5MB")
	ErrNotImage  = errors.New("file is not a supported image")
	ErrMalformed = errors.New("malformed data URL")
)

// Image is either a data URL or a remote http(s) URL.
type Image string

func (i Image) IsEmpty() bool {
	return strings.TrimSpace(string(i)) == ""
}

// IsEmbedded reports whether the image is self-contained.
func (i Image) IsEmbedded() bool {
	return strings.HasPrefix(string(i), "data:")
}

// IsRemote reports whether the image must be fetched before use.
func (i Image) IsRemote() bool {
	s := string(i)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Blob is decoded image bytes with their MIME type.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Encode formats b as a base64 data URL.
func Encode(b Blob) Image {
	mimeType := b.MIMEType
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return Image("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(b.Data))
}

// FromBase64 wraps an already encoded payload in a data URL without decoding it.
func FromBase64(mimeType, payload string) Image {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return Image("data:" + mimeType + ";base64," + payload)
}

// Decode parses a base64 data URL.
func Decode(img Image) (Blob, error) {
	s := string(img)
	if !strings.HasPrefix(s, "data:") {
		return Blob{}, fmt.Errorf("%w: missing data: scheme", ErrMalformed)
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return Blob{}, fmt.Errorf("%w: missing payload separator", ErrMalformed)
	}

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return Blob{}, fmt.Errorf("%w: payload is not base64", ErrMalformed)
	}
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Blob{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return Blob{MIMEType: mimeType, Data: data}, nil
}

// StripPrefix returns the payload after the first comma, or s unchanged when
// there is none.
func StripPrefix(s string) string {
	if _, payload, ok := strings.Cut(s, ","); ok && payload != "" {
		return payload
	}
	return s
}

// ReadUpload validates an uploaded file and converts it to a data URL.
// size is the size reported by the client; it is checked before reading, and
// the read itself is capped so an understated size cannot get past the limit.
func ReadUpload(r io.Reader, size int64, declaredType string) (Image, error) {
	if size > MaxUploadBytes {
		return "", ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	mimeType, err := DetectImageType(data, declaredType)
	if err != nil {
		return "", err
	}

	return Encode(Blob{MIMEType: mimeType, Data: data}), nil
}

// DetectImageType sniffs data, falling back to the declared type when
// sniffing is inconclusive.
func DetectImageType(data []byte, declaredType string) (string, error) {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}

	declared, _, _ := strings.Cut(declaredType, ";")
	declared = strings.TrimSpace(strings.ToLower(declared))
	if strings.HasPrefix(declared, "image/") {
		return declared, nil
	}

	return "", ErrNotImage
}
