package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/tryon/internal/history"
	"github.com/lehigh-university-libraries/tryon/internal/presets"
	"github.com/lehigh-university-libraries/tryon/internal/storage"
	"github.com/lehigh-university-libraries/tryon/internal/wizard"
)

type Handler struct {
	sessionStore *storage.SessionStore
	history      *history.Store
	catalog      *presets.Catalog
	generator    wizard.Generator
	resolver     wizard.Resolver
}

// SessionResponse is returned by every session endpoint
type SessionResponse struct {
	SessionID string       `json:"session_id"`
	State     wizard.State `json:"state"`
	Rejected  string       `json:"rejected,omitempty"`
}

func New(generator wizard.Generator, resolver wizard.Resolver, hist *history.Store, catalog *presets.Catalog) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		history:      hist,
		catalog:      catalog,
		generator:    generator,
		resolver:     resolver,
	}
}

// Register sets up the routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleSessionDetail)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/person", h.HandleUpload)
	mux.HandleFunc("POST /api/sessions/{id}/clothes", h.HandleUpload)
	mux.HandleFunc("POST /api/sessions/{id}/advance", h.HandleAdvance)
	mux.HandleFunc("POST /api/sessions/{id}/back", h.HandleBack)
	mux.HandleFunc("POST /api/sessions/{id}/restart", h.HandleRestart)
	mux.HandleFunc("POST /api/sessions/{id}/garment", h.HandleGarment)
	mux.HandleFunc("POST /api/sessions/{id}/tryon", h.HandleTryOn)
	mux.HandleFunc("POST /api/sessions/{id}/history/{entryID}", h.HandleViewHistory)
	mux.HandleFunc("GET /api/history", h.HandleHistory)
	mux.HandleFunc("GET /api/presets", h.HandlePresets)
	mux.HandleFunc("GET /", h.HandleStatic)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// writeState reports the session after an operation. Failures the user should
// see travel in state.error with a 200; refused transitions get a 409.
func (h *Handler) writeState(w http.ResponseWriter, sessionID string, state wizard.State, err error) {
	resp := SessionResponse{SessionID: sessionID, State: state}

	switch {
	case err == nil:
		h.writeJSON(w, resp)
	case errors.Is(err, wizard.ErrHistoryNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case wizard.IsRejection(err):
		slog.Info("Request refused", "session_id", sessionID, "step", state.Step, "err", err)
		resp.Rejected = err.Error()
		h.writeJSONStatus(w, http.StatusConflict, resp)
	default:
		slog.Warn("Operation failed", "session_id", sessionID, "step", state.Step, "err", err)
		h.writeJSON(w, resp)
	}
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (string, *wizard.Controller, bool) {
	sessionID := r.PathValue("id")
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return sessionID, nil, false
	}
	return sessionID, session, true
}
