package ports

import (
	"time"

	"github.com/astren/core/internal/domain/entities"
)

// Request types carried across the service boundary. Validation tags are
// enforced before any request leaves the client.

// CreateTaskRequest creates a task. Title and due date are mandatory.
type CreateTaskRequest struct {
	UserID      int64     `json:"user_id" validate:"required"`
	Title       string    `json:"title" validate:"required,min=3"`
	Description string    `json:"description"`
	AreaID      *int64    `json:"area_id"`
	GroupID     *int64    `json:"group_id"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// UpdateTaskRequest merges the set fields into an existing task.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=3"`
	Description *string    `json:"description"`
	AreaID      *int64     `json:"area_id"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateTaskResult reports the backend's answer to a creation. Duplicate is
// set when the backend recognized the task as already existing; callers
// treat that as non-fatal success and reload from the source of truth.
type CreateTaskResult struct {
	Task      *entities.Task
	Duplicate bool
}

// CreateAreaRequest creates a locally-owned area.
type CreateAreaRequest struct {
	UserID      int64                 `json:"user_id" validate:"required"`
	Name        string                `json:"name" validate:"required,min=2"`
	Description string                `json:"description"`
	Color       string                `json:"color" validate:"required"`
	Icon        string                `json:"icon" validate:"required"`
	Category    entities.AreaCategory `json:"category"`
}

// UpdateAreaRequest merges the set fields into an existing area.
type UpdateAreaRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=2"`
	Description *string                `json:"description"`
	Color       *string                `json:"color"`
	Icon        *string                `json:"icon"`
	Category    *entities.AreaCategory `json:"category"`
}

// RegisterRequest creates a backend user account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	LastName string `json:"last_name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest authenticates against the backend.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status   *entities.TaskStatus
	AreaID   *int64
	Search   string
	DueToday bool
}

// AreaFilter narrows area listings.
type AreaFilter struct {
	Archived *bool
	Search   string
}

// DashboardCounts are the headline numbers shown on the dashboard.
type DashboardCounts struct {
	Today     int `json:"today"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// Badges are the navigation chrome counters sourced from the managers.
type Badges struct {
	TasksToday          int `json:"tasks_today"`
	TasksPending        int `json:"tasks_pending"`
	UnreadNotifications int `json:"unread_notifications"`
	ActiveAreas         int `json:"active_areas"`
}
