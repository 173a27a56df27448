package ports

import (
	"context"

	"github.com/astren/core/internal/domain/entities"
)

// LocalStore is the persisted key/value mirror of server and local-only
// state (the browser-storage analog). Collections are read and written
// wholesale; concurrent writers to the same key are last-writer-wins.
// A missing or corrupt value falls back to the collection's default
// dataset, never to an error.
type LocalStore interface {
	TaskMirror
	AreaStore
	GroupStore
	NotificationStore
	ReputationStore
	SettingsStore
	ProfileStore
	SessionStore
}

// TaskMirror persists the task collection fetched from the backend. The
// network copy is always authoritative over the mirror.
type TaskMirror interface {
	Tasks() []entities.Task
	SaveTasks(tasks []entities.Task) error
}

// AreaStore persists the locally-owned area collection.
type AreaStore interface {
	Areas() []entities.Area
	SaveAreas(areas []entities.Area) error
}

// GroupStore persists the read-only group mirror.
type GroupStore interface {
	Groups() []entities.Group
	SaveGroups(groups []entities.Group) error
}

// NotificationStore persists the notification inbox.
type NotificationStore interface {
	Notifications() []entities.Notification
	SaveNotifications(notifications []entities.Notification) error
}

// ReputationStore persists the score document and its history.
type ReputationStore interface {
	Reputation() entities.Reputation
	SaveReputation(rep entities.Reputation) error
	ReputationHistory() []entities.ReputationEvent
	SaveReputationHistory(history []entities.ReputationEvent) error
}

// SettingsStore persists the user preference document.
type SettingsStore interface {
	Settings() entities.Settings
	SaveSettings(settings entities.Settings) error
}

// ProfileStore persists the display identity document.
type ProfileStore interface {
	Profile() entities.Profile
	SaveProfile(profile entities.Profile) error
}

// SessionStore persists the authenticated identity. Remember-me controls
// whether the session survives across runs.
type SessionStore interface {
	Session() (entities.Session, bool)
	SaveSession(session entities.Session) error
	ClearSession() error
}

// BackendGateway is the REST boundary to the task backend. Implementations
// translate between the canonical entities and the backend wire shapes;
// the Spanish field naming never crosses this interface.
type BackendGateway interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResult, error)
	ListTasks(ctx context.Context, userID int64) ([]entities.Task, error)
	UpdateTask(ctx context.Context, taskID int64, req UpdateTaskRequest) error
	UpdateTaskStatus(ctx context.Context, taskID int64, status entities.TaskStatus) error
	// DeleteTask returns entities.ErrTaskNotFound when the backend reports
	// the task already gone; callers treat that as idempotent success.
	DeleteTask(ctx context.Context, taskID, userID int64) error
	ListAreas(ctx context.Context, userID int64) ([]entities.Area, error)
	ListGroups(ctx context.Context, userID int64) ([]entities.Group, error)
	Register(ctx context.Context, req RegisterRequest) (int64, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}
