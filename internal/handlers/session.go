package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"focusflow-backend/internal/middleware"
	"focusflow-backend/internal/models"
	"focusflow-backend/internal/repository"
)

type SessionHandler struct {
	repo   *repository.SessionRepo
	pubsub *redis.Client
}

func NewSessionHandler(repo *repository.SessionRepo, pubsub *redis.Client) *SessionHandler {
	return &SessionHandler{repo: repo, pubsub: pubsub}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session := &models.Session{UserID: userID}
	if req.StartTime != nil {
		session.StartTime = req.StartTime.UTC()
	}

	if err := h.repo.Create(r.Context(), session); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to start session", r))
		return
	}

	h.publish(r, userID, models.WSMessage{Type: "session_started", Payload: session})

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": session,
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	session, err := h.repo.SessionByID(r.Context(), userID, sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load session", r))
		return
	}
	if session == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
	})
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	sessions, err := h.repo.ListByUser(r.Context(), userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list sessions", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

// AddEvent records a timeline event. Replaying the same (type, timestamp) for
// a session is a no-op, so devices can retry safely.
func (h *SessionHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.SessionEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if !validEventType(req.EventType) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unknown event type", r))
		return
	}
	if req.Timestamp.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Timestamp is required", r))
		return
	}

	session, err := h.repo.SessionByID(r.Context(), userID, sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load session", r))
		return
	}
	if session == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	event := &models.SessionEvent{
		SessionID:       sessionID,
		EventType:       req.EventType,
		Timestamp:       req.Timestamp.UTC(),
		AppName:         req.AppName,
		DurationSeconds: req.DurationSeconds,
		MetadataJSON: func() json.RawMessage {
			if len(req.Metadata) == 0 {
				return json.RawMessage("{}")
			}
			return req.Metadata
		}(),
	}

	if err := h.repo.AddEvent(r.Context(), event); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to record event", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"event": event,
	})
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.CompleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.DurationSeconds < 0 || req.FocusedSeconds < 0 || req.DistractionCount < 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Counters must not be negative", r))
		return
	}
	if req.FocusedSeconds > req.DurationSeconds {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "focused_seconds cannot exceed duration_seconds", r))
		return
	}

	session, err := h.repo.Complete(r.Context(), userID, sessionID, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to complete session", r))
		return
	}
	if session == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	h.publish(r, userID, models.WSMessage{Type: "session_completed", Payload: session})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
	})
}

// publish fans a message out to the user's other devices. Best effort.
func (h *SessionHandler) publish(r *http.Request, userID uuid.UUID, msg models.WSMessage) {
	if h.pubsub == nil {
		return
	}
	data, _ := json.Marshal(msg)
	h.pubsub.Publish(r.Context(), fmt.Sprintf("user_updates:%s", userID.String()), string(data))
}

func validEventType(t string) bool {
	switch t {
	case models.EventStart, models.EventPause, models.EventResume, models.EventStop,
		models.EventTaskComplete, models.EventDistraction, models.EventIdle:
		return true
	}
	return false
}
