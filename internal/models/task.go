package models

import (
	"time"

	"github.com/google/uuid"
)

// Task status codes, matching the mobile client's enum.
const (
	TaskStatusTodo       = 0
	TaskStatusInProgress = 1
	TaskStatusDone       = 2
)

type Task struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	ProjectID       *uuid.UUID `json:"project_id,omitempty"`
	Title           string     `json:"title"`
	EstimateMinutes *int       `json:"estimate_minutes,omitempty"`
	Priority        int        `json:"priority"`
	Status          int        `json:"status"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	SortOrder       int        `json:"sort_order"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Project struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TaskRequest struct {
	Title           string     `json:"title"`
	ProjectID       *uuid.UUID `json:"project_id"`
	EstimateMinutes *int       `json:"estimate_minutes"`
	Priority        *int       `json:"priority"`
	Status          *int       `json:"status"`
	DueDate         *time.Time `json:"due_date"`
	SortOrder       *int       `json:"sort_order"`
}

type ProjectRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}
