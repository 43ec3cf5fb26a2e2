package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"github.com/lehigh-university-libraries/tryon/internal/wizard"
)

// maxRequestBytes bounds the whole multipart body. The per-file limit is
// enforced by the controller; bodies past this cap get the same oversized error.
const maxRequestBytes = 32 * 1024 * 1024

// HandleUpload selects the person or clothing image, either from a multipart
// file or from a JSON body naming a preset or data URL.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	sessionID, session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	kind := wizard.Kind(path.Base(r.URL.Path))

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLSelect(w, r, sessionID, session, kind)
		return
	}

	h.handleFileUpload(w, r, sessionID, session, kind)
}

func (h *Handler) handleURLSelect(w http.ResponseWriter, r *http.Request, sessionID string, session *wizard.Controller, kind wizard.Kind) {
	var request struct {
		Image string `json:"image"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	img := imagedata.Image(strings.TrimSpace(request.Image))
	if img.IsEmpty() {
		h.writeError(w, "image is required", http.StatusBadRequest)
		return
	}
	if !img.IsRemote() && !img.IsEmbedded() {
		h.writeError(w, "image must be an http(s) or data URL", http.StatusBadRequest)
		return
	}
	// Remote images are fetched server-side, so only presets are allowed.
	if img.IsRemote() && !h.isPreset(kind, string(img)) {
		h.writeError(w, "image URL is not a preset; upload the file instead", http.StatusBadRequest)
		return
	}

	state, err := session.Select(kind, img)
	h.writeState(w, sessionID, state, err)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request, sessionID string, session *wizard.Controller, kind wizard.Kind) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(imagedata.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeState(w, sessionID, session.Reject(imagedata.ErrTooLarge), imagedata.ErrTooLarge)
			return
		}
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	state, err := session.Upload(kind, header.Size, header.Header.Get("Content-Type"), file)
	h.writeState(w, sessionID, state, err)
}

func (h *Handler) isPreset(kind wizard.Kind, ref string) bool {
	if h.catalog == nil {
		return false
	}
	switch kind {
	case wizard.KindPerson:
		return h.catalog.HasPerson(ref)
	case wizard.KindClothes:
		return h.catalog.HasClothes(ref)
	default:
		return false
	}
}
