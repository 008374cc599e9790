package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"focusflow-backend/internal/middleware"
	"focusflow-backend/internal/models"
)

type stubUserRepoForNotifications struct {
	stubUserRepoForSettingsHandlers

	setKey     string
	setEnabled bool
	setCalled  bool
}

func (s *stubUserRepoForNotifications) SetNotificationSetting(ctx context.Context, userID uuid.UUID, key string, enabled bool) error {
	s.setCalled = true
	s.setKey = key
	s.setEnabled = enabled
	return nil
}

func TestUserHandler_UpdateNotificationSetting_UnknownKey(t *testing.T) {
	userID := uuid.New()
	repo := &stubUserRepoForNotifications{}
	h := &UserHandler{userRepo: repo}

	body := `{"key":"weekly_digest","enabled":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/user/notifications", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.UpdateNotificationSetting(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if repo.setCalled {
		t.Fatalf("unknown keys must not reach the repository")
	}
}

func TestUserHandler_UpdateNotificationSetting_FocusReminders(t *testing.T) {
	userID := uuid.New()
	repo := &stubUserRepoForNotifications{}
	h := &UserHandler{userRepo: repo}

	body := `{"key":"focus_reminders","enabled":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/user/notifications", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.UpdateNotificationSetting(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !repo.setCalled || repo.setKey != "focus_reminders" || !repo.setEnabled {
		t.Fatalf("expected focus_reminders to be enabled, got called=%v key=%q enabled=%v", repo.setCalled, repo.setKey, repo.setEnabled)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["key"] != "focus_reminders" || payload["enabled"] != true {
		t.Fatalf("unexpected response payload: %v", payload)
	}
}

func TestUserHandler_GetNotificationSettings_EmptyDefaultsToObject(t *testing.T) {
	userID := uuid.New()
	repo := &stubUserRepoForNotifications{}
	repo.settings = &models.UserSettings{UserID: userID}
	h := &UserHandler{userRepo: repo}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/notifications", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))

	rr := httptest.NewRecorder()
	h.GetNotificationSettings(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Notifications map[string]interface{} `json:"notifications"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Notifications == nil || len(payload.Notifications) != 0 {
		t.Fatalf("expected empty notifications object, got %v", payload.Notifications)
	}
}
