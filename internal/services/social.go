package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"focusflow-backend/internal/models"
)

// SocialStore is the persistence surface for friendships, groups, and
// encouragements. Implemented by repository.SocialRepo.
type SocialStore interface {
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error)
	FriendshipBetween(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error)
	CreateFriendship(ctx context.Context, f *models.Friendship) error
	AcceptFriendship(ctx context.Context, userID, friendshipID uuid.UUID) (bool, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
	ListGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
	CreateGroup(ctx context.Context, g *models.Group) error
	IsGroupMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	GroupLeaderboard(ctx context.Context, groupID uuid.UUID, since time.Time) ([]models.LeaderboardEntry, error)
	AddSocialEvent(ctx context.Context, fromUserID, toUserID uuid.UUID, eventType, message string) error
}

// UserFinder resolves invite targets by email.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Notifier fans a message out to a user's connected devices. Best effort.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

const (
	inviteDailyLimit = 20
	leaderboardSpan  = 7 * 24 * time.Hour
)

type SocialService struct {
	store    SocialStore
	users    UserFinder
	kv       KV
	notifier Notifier
}

// NewSocialService wires the social features. kv and notifier may be nil; the
// service then skips invite rate limiting and notification fan-out.
func NewSocialService(store SocialStore, users UserFinder, kv KV, notifier Notifier) *SocialService {
	return &SocialService{store: store, users: users, kv: kv, notifier: notifier}
}

func (s *SocialService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	return s.store.ListFriends(ctx, userID)
}

// InviteFriend creates a pending friendship toward the user registered under
// the given email. Invites count against a daily per-user budget.
func (s *SocialService) InviteFriend(ctx context.Context, userID uuid.UUID, email string) (*models.Friendship, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegex.MatchString(email) {
		return nil, &ValidationError{Fields: map[string]string{"email": "Invalid email format"}}
	}

	if !s.withinInviteLimit(ctx, userID) {
		return nil, &RateLimitError{Message: "Daily invite limit reached"}
	}

	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &NotFoundError{Message: "No user with that email"}
	}
	if target.ID == userID {
		return nil, &ValidationError{Fields: map[string]string{"email": "You cannot invite yourself"}}
	}

	existing, err := s.store.FriendshipBetween(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{Message: "A friendship or pending invite already exists"}
	}

	f := &models.Friendship{
		UserID1:     userID,
		UserID2:     target.ID,
		Status:      models.FriendshipPending,
		InitiatedBy: userID,
	}
	if err := s.store.CreateFriendship(ctx, f); err != nil {
		return nil, err
	}

	s.notify(ctx, target.ID, models.WSMessage{Type: "friend_invite", Payload: f})
	return f, nil
}

// AcceptFriend accepts a pending invite. Only a participant other than the
// initiator can accept.
func (s *SocialService) AcceptFriend(ctx context.Context, userID, friendshipID uuid.UUID) error {
	ok, err := s.store.AcceptFriendship(ctx, userID, friendshipID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Message: "No pending invite to accept"}
	}
	return nil
}

func (s *SocialService) ListGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	return s.store.ListGroups(ctx, userID)
}

func (s *SocialService) CreateGroup(ctx context.Context, userID uuid.UUID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "Group name is required"}}
	}

	g := &models.Group{Name: name, CreatedBy: userID}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Leaderboard ranks a group's members by focused time over the last 7 days.
// Only members can view it.
func (s *SocialService) Leaderboard(ctx context.Context, userID, groupID uuid.UUID) ([]models.LeaderboardEntry, error) {
	member, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, &ForbiddenError{Message: "You are not a member of this group"}
	}

	since := time.Now().UTC().Add(-leaderboardSpan)
	entries, err := s.store.GroupLeaderboard(ctx, groupID, since)
	if err != nil {
		return nil, err
	}
	return rankEntries(entries), nil
}

// Encourage records an encouragement and pushes it to the recipient's
// devices. Sender and recipient must be accepted friends.
func (s *SocialService) Encourage(ctx context.Context, fromUserID uuid.UUID, req models.EncourageRequest) error {
	if req.ToUserID == uuid.Nil {
		return &ValidationError{Fields: map[string]string{"to_user_id": "Recipient is required"}}
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		msg = "Keep going, you've got this!"
	}

	friends, err := s.store.AreFriends(ctx, fromUserID, req.ToUserID)
	if err != nil {
		return err
	}
	if !friends {
		return &ForbiddenError{Message: "You can only encourage friends"}
	}

	if err := s.store.AddSocialEvent(ctx, fromUserID, req.ToUserID, "encouragement", msg); err != nil {
		return err
	}

	s.notify(ctx, req.ToUserID, models.WSMessage{Type: "encouragement", Payload: map[string]string{
		"from":    fromUserID.String(),
		"message": msg,
	}})
	return nil
}

// withinInviteLimit counts this invite against the sender's daily budget. A
// broken counter store never blocks the invite.
func (s *SocialService) withinInviteLimit(ctx context.Context, userID uuid.UUID) bool {
	if s.kv == nil {
		return true
	}

	key := fmt.Sprintf("invites:%s:%s", userID, time.Now().UTC().Format("2006-01-02"))
	count, err := s.kv.Incr(ctx, key)
	if err != nil {
		log.Printf("social: invite counter failed, allowing request: %v", err)
		return true
	}
	if count == 1 {
		if err := s.kv.Expire(ctx, key, rateWindowTTL); err != nil {
			log.Printf("social: invite counter expire failed: %v", err)
		}
	}
	return count <= inviteDailyLimit
}

func (s *SocialService) notify(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(ctx, userID, msg)
}

// rankEntries assigns 1-based ranks to an already-sorted leaderboard.
func rankEntries(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RedisNotifier delivers messages over the per-user update channel the
// websocket hub subscribes to.
type RedisNotifier struct {
	Client *redis.Client
}

func (n *RedisNotifier) NotifyUser(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	if n.Client == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := n.Client.Publish(ctx, "user_updates:"+userID.String(), string(data)).Err(); err != nil {
		log.Printf("social: notify publish failed: %v", err)
	}
}
