package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"focusflow-backend/internal/middleware"
	"focusflow-backend/internal/models"
)

// userStore is the slice of the user repository this handler needs.
type userStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, userID uuid.UUID) error
	GetSettings(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	UpdateSettings(ctx context.Context, settings *models.UserSettings) error
	SetNotificationSetting(ctx context.Context, userID uuid.UUID, key string, enabled bool) error
}

type UserHandler struct {
	userRepo userStore
}

func NewUserHandler(userRepo userStore) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	var update struct {
		FullName string  `json:"full_name"`
		Avatar   *string `json:"avatar_url"`
		Timezone string  `json:"timezone"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if len(update.FullName) > 100 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Full name must be at most 100 characters", r))
		return
	}

	if update.FullName != "" {
		user.FullName = update.FullName
	}
	if update.Avatar != nil {
		user.AvatarURL = update.Avatar
	}
	if update.Timezone != "" {
		user.Timezone = update.Timezone
	}

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update profile", r))
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Current password is incorrect", r))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to hash password", r))
		return
	}

	h.userRepo.UpdatePassword(r.Context(), userID, string(hash))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.userRepo.Delete(r.Context(), userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete account", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

func (h *UserHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	settings, err := h.userRepo.GetSettings(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Settings not found", r))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var update struct {
		DailyFocusGoalMin *int            `json:"daily_focus_goal_min"`
		DefaultSessionMin *int            `json:"default_session_min"`
		Notifications     json.RawMessage `json:"notifications"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if update.DailyFocusGoalMin != nil && (*update.DailyFocusGoalMin < 0 || *update.DailyFocusGoalMin > 1440) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "daily_focus_goal_min must be between 0 and 1440", r))
		return
	}
	if update.DefaultSessionMin != nil && (*update.DefaultSessionMin < 5 || *update.DefaultSessionMin > 240) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "default_session_min must be between 5 and 240", r))
		return
	}

	settings, err := h.userRepo.GetSettings(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Settings not found", r))
		return
	}

	if update.DailyFocusGoalMin != nil {
		settings.DailyFocusGoalMin = *update.DailyFocusGoalMin
	}
	if update.DefaultSessionMin != nil {
		settings.DefaultSessionMin = *update.DefaultSessionMin
	}
	if len(update.Notifications) > 0 {
		settings.NotificationsJSON = update.Notifications
	}

	if err := h.userRepo.UpdateSettings(r.Context(), settings); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update settings", r))
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (h *UserHandler) GetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	settings, err := h.userRepo.GetSettings(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Settings not found", r))
		return
	}

	notifications := settings.NotificationsJSON
	if len(notifications) == 0 {
		notifications = json.RawMessage("{}")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}

func (h *UserHandler) UpdateNotificationSetting(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		Key     string `json:"key"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Key != "focus_reminders" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unknown notification setting", r))
		return
	}

	if err := h.userRepo.SetNotificationSetting(r.Context(), userID, req.Key, req.Enabled); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update notification setting", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":     req.Key,
		"enabled": req.Enabled,
	})
}
