package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"github.com/lehigh-university-libraries/tryon/internal/wizard"
)

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	controller := h.newController()
	sessionID := h.sessionStore.Create(controller)
	slog.Info("Session created", "session_id", sessionID, "sessions", h.sessionStore.Len())
	h.writeJSON(w, SessionResponse{SessionID: sessionID, State: controller.State()})
}

// HandleDeleteSession drops a session when its tab closes.
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if !h.sessionStore.Delete(sessionID) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	slog.Info("Session closed", "session_id", sessionID, "sessions", h.sessionStore.Len())
	w.WriteHeader(http.StatusNoContent)
}

// SweepSessions removes sessions idle for longer than maxIdle until ctx is done.
func (h *Handler) SweepSessions(ctx context.Context, maxIdle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := h.sessionStore.Sweep(maxIdle); removed > 0 {
				slog.Info("Idle sessions removed", "removed", removed, "sessions", h.sessionStore.Len())
			}
		}
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	sessionID, session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, SessionResponse{SessionID: sessionID, State: session.State()})
}

func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	sessionID, session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	state, err := session.Advance()
	h.writeState(w, sessionID, state, err)
}

func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	sessionID, session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	state, err := session.Back()
	h.writeState(w, sessionID, state, err)
}

func (h *Handler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID, session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeState(w, sessionID, session.Restart(), nil)
}

func (h *Handler) HandleGarment(w http.ResponseWriter, r *http.Request) {
	sessionID, session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	state, err := session.GenerateClothes(r.Context(), request.Prompt)
	h.writeState(w, sessionID, state, err)
}

func (h *Handler) HandleTryOn(w http.ResponseWriter, r *http.Request) {
	sessionID, session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	state, err := session.StartTryOn(r.Context())
	h.writeState(w, sessionID, state, err)
}

func (h *Handler) HandleViewHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	state, err := session.ViewHistory(r.PathValue("entryID"))
	h.writeState(w, sessionID, state, err)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.history.List())
}

func (h *Handler) HandlePresets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.catalog)
}

func (h *Handler) newController() *wizard.Controller {
	var clothes []imagedata.Image
	if h.catalog != nil {
		clothes = h.catalog.ClothesImages()
	}
	return wizard.NewController(h.generator, h.resolver, h.history, clothes)
}
