package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"focusflow-backend/internal/middleware"
	"focusflow-backend/internal/services"
)

type CoachingHandler struct {
	coaching *services.CoachingService
}

func NewCoachingHandler(coaching *services.CoachingService) *CoachingHandler {
	return &CoachingHandler{coaching: coaching}
}

// SessionSummary always returns 200: provider failures surface as a
// rule-based summary with is_ai_generated=false, never as an error.
func (h *CoachingHandler) SessionSummary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	resp, err := h.coaching.SessionSummary(r.Context(), userID, sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build session summary", r))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *CoachingHandler) Nudge(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.coaching.Nudge(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build nudge", r))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *CoachingHandler) GoalSuggestions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.coaching.GoalSuggestions(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build goal suggestions", r))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
