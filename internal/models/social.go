package models

import (
	"time"

	"github.com/google/uuid"
)

// Friendship statuses.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship stores the pair in canonical order (UserID1 < UserID2 by byte
// comparison) so one row covers both directions.
type Friendship struct {
	ID          uuid.UUID `json:"id"`
	UserID1     uuid.UUID `json:"user_id_1"`
	UserID2     uuid.UUID `json:"user_id_2"`
	Status      string    `json:"status"`
	InitiatedBy uuid.UUID `json:"initiated_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Friend is one row of the friends list: the friendship plus the other
// user's public fields.
type Friend struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Status   string    `json:"status"`
	Since    time.Time `json:"since"`
}

type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}

type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	FullName       string    `json:"full_name"`
	FocusedSeconds int       `json:"focused_seconds"`
	SessionCount   int       `json:"session_count"`
	Rank           int       `json:"rank"`
}

type FriendInviteRequest struct {
	Email string `json:"email"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type EncourageRequest struct {
	ToUserID uuid.UUID `json:"to_user_id"`
	Message  string    `json:"message"`
}
