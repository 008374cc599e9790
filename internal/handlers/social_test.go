package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"focusflow-backend/internal/middleware"
	"focusflow-backend/internal/models"
	"focusflow-backend/internal/services"
)

type stubSocialStore struct {
	friends    []models.Friend
	friendship *models.Friendship
	acceptOK   bool
	areFriends bool
	isMember   bool
	entries    []models.LeaderboardEntry
}

func (s *stubSocialStore) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	return s.friends, nil
}

func (s *stubSocialStore) FriendshipBetween(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error) {
	return s.friendship, nil
}

func (s *stubSocialStore) CreateFriendship(ctx context.Context, f *models.Friendship) error {
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	return nil
}

func (s *stubSocialStore) AcceptFriendship(ctx context.Context, userID, friendshipID uuid.UUID) (bool, error) {
	return s.acceptOK, nil
}

func (s *stubSocialStore) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.areFriends, nil
}

func (s *stubSocialStore) ListGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	return nil, nil
}

func (s *stubSocialStore) CreateGroup(ctx context.Context, g *models.Group) error {
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	g.MemberCount = 1
	return nil
}

func (s *stubSocialStore) IsGroupMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return s.isMember, nil
}

func (s *stubSocialStore) GroupLeaderboard(ctx context.Context, groupID uuid.UUID, since time.Time) ([]models.LeaderboardEntry, error) {
	return s.entries, nil
}

func (s *stubSocialStore) AddSocialEvent(ctx context.Context, fromUserID, toUserID uuid.UUID, eventType, message string) error {
	return nil
}

type stubUserFinder struct {
	user *models.User
}

func (s *stubUserFinder) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.user, nil
}

func newSocialHandler(store *stubSocialStore, users *stubUserFinder) *SocialHandler {
	return NewSocialHandler(services.NewSocialService(store, users, nil, nil))
}

func socialRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, uuid.New()))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSocialHandler_InviteFriend(t *testing.T) {
	t.Run("invalid body", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{}, &stubUserFinder{})
		rr := httptest.NewRecorder()
		h.InviteFriend(rr, socialRequest(http.MethodPost, "/api/v1/friends/invite", "{not json"))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})

	t.Run("unknown email is 404", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{}, &stubUserFinder{user: nil})
		rr := httptest.NewRecorder()
		h.InviteFriend(rr, socialRequest(http.MethodPost, "/api/v1/friends/invite", `{"email":"ghost@example.com"}`))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
	})

	t.Run("success is 201 with pending friendship", func(t *testing.T) {
		target := &models.User{ID: uuid.New(), Email: "friend@example.com"}
		h := newSocialHandler(&stubSocialStore{}, &stubUserFinder{user: target})

		rr := httptest.NewRecorder()
		h.InviteFriend(rr, socialRequest(http.MethodPost, "/api/v1/friends/invite", `{"email":"friend@example.com"}`))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
		}

		var payload struct {
			Friendship models.Friendship `json:"friendship"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload.Friendship.Status != models.FriendshipPending {
			t.Errorf("expected pending friendship, got %q", payload.Friendship.Status)
		}
	})
}

func TestSocialHandler_AcceptFriend(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{}, &stubUserFinder{})
		rr := httptest.NewRecorder()
		req := withURLParam(socialRequest(http.MethodPost, "/api/v1/friends/oops/accept", ""), "id", "oops")
		h.AcceptFriend(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})

	t.Run("nothing to accept is 404", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{acceptOK: false}, &stubUserFinder{})
		rr := httptest.NewRecorder()
		id := uuid.New().String()
		req := withURLParam(socialRequest(http.MethodPost, "/api/v1/friends/"+id+"/accept", ""), "id", id)
		h.AcceptFriend(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
		}
	})

	t.Run("accepted", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{acceptOK: true}, &stubUserFinder{})
		rr := httptest.NewRecorder()
		id := uuid.New().String()
		req := withURLParam(socialRequest(http.MethodPost, "/api/v1/friends/"+id+"/accept", ""), "id", id)
		h.AcceptFriend(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
	})
}

func TestSocialHandler_CreateGroup(t *testing.T) {
	t.Run("blank name", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{}, &stubUserFinder{})
		rr := httptest.NewRecorder()
		h.CreateGroup(rr, socialRequest(http.MethodPost, "/api/v1/groups", `{"name":"  "}`))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{}, &stubUserFinder{})
		rr := httptest.NewRecorder()
		h.CreateGroup(rr, socialRequest(http.MethodPost, "/api/v1/groups", `{"name":"Deep Work Club"}`))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
		}

		var payload struct {
			Group models.Group `json:"group"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload.Group.MemberCount != 1 {
			t.Errorf("expected creator as first member, got count %d", payload.Group.MemberCount)
		}
	})
}

func TestSocialHandler_Leaderboard_NonMemberIs403(t *testing.T) {
	h := newSocialHandler(&stubSocialStore{isMember: false}, &stubUserFinder{})
	rr := httptest.NewRecorder()
	id := uuid.New().String()
	req := withURLParam(socialRequest(http.MethodGet, "/api/v1/groups/"+id+"/leaderboard", ""), "id", id)
	h.Leaderboard(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
}

func TestSocialHandler_Encourage(t *testing.T) {
	t.Run("non-friend is 403", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{areFriends: false}, &stubUserFinder{})
		rr := httptest.NewRecorder()
		body := `{"to_user_id":"` + uuid.New().String() + `","message":"go!"}`
		h.Encourage(rr, socialRequest(http.MethodPost, "/api/v1/social/encourage", body))
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
		}
	})

	t.Run("sent is 201", func(t *testing.T) {
		h := newSocialHandler(&stubSocialStore{areFriends: true}, &stubUserFinder{})
		rr := httptest.NewRecorder()
		body := `{"to_user_id":"` + uuid.New().String() + `","message":"nice streak!"}`
		h.Encourage(rr, socialRequest(http.MethodPost, "/api/v1/social/encourage", body))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
		}
	})
}
