package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session event types. Only EventDistraction carries analytic meaning;
// the rest are stored verbatim for the device timeline.
const (
	EventStart        = "START"
	EventPause        = "PAUSE"
	EventResume       = "RESUME"
	EventStop         = "STOP"
	EventTaskComplete = "TASK_COMPLETE"
	EventDistraction  = "DISTRACTION"
	EventIdle         = "IDLE"
)

type Session struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	DurationSeconds  int        `json:"duration_seconds"`
	FocusedSeconds   int        `json:"focused_seconds"`
	DistractionCount int        `json:"distraction_count"`
	IsComplete       bool       `json:"is_complete"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type SessionEvent struct {
	ID              uuid.UUID       `json:"id"`
	SessionID       uuid.UUID       `json:"session_id"`
	EventType       string          `json:"event_type"`
	Timestamp       time.Time       `json:"timestamp"`
	AppName         *string         `json:"app_name,omitempty"`
	DurationSeconds *int            `json:"duration_seconds,omitempty"`
	MetadataJSON    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type StartSessionRequest struct {
	StartTime *time.Time `json:"start_time"`
}

type SessionEventRequest struct {
	EventType       string          `json:"event_type"`
	Timestamp       time.Time       `json:"timestamp"`
	AppName         *string         `json:"app_name"`
	DurationSeconds *int            `json:"duration_seconds"`
	Metadata        json.RawMessage `json:"metadata"`
}

type CompleteSessionRequest struct {
	EndTime          *time.Time `json:"end_time"`
	DurationSeconds  int        `json:"duration_seconds"`
	FocusedSeconds   int        `json:"focused_seconds"`
	DistractionCount int        `json:"distraction_count"`
}

// WSMessage is fanned out to a user's connected devices via Redis pub/sub.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
