package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

// Notification types produced by the application.
const (
	NotificationTypeWelcome    = "welcome"
	NotificationTypeOverdue    = "task_overdue"
	NotificationTypeCompleted  = "task_completed"
	NotificationTypeReputation = "reputation"
)

// NotificationService manages the locally-owned notification inbox.
type NotificationService struct {
	store  ports.LocalStore
	logger *logger.Logger
	mu     sync.Mutex
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store ports.LocalStore, log *logger.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: log.WithComponent("notifications"),
	}
}

// List returns the inbox, newest first.
func (s *NotificationService) List() []entities.Notification {
	return s.store.Notifications()
}

// UnreadCount returns how many entries are unread.
func (s *NotificationService) UnreadCount() int {
	count := 0
	for _, n := range s.store.Notifications() {
		if !n.Read {
			count++
		}
	}
	return count
}

// Push prepends a new notification to the inbox.
func (s *NotificationService) Push(userID int64, kind, title, message string) (*entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification := entities.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	inbox := append([]entities.Notification{notification}, s.store.Notifications()...)
	if err := s.store.SaveNotifications(inbox); err != nil {
		return nil, err
	}

	s.logger.Debugw("Notification pushed", "type", kind, "title", title)
	return &notification, nil
}

// MarkRead flags one entry as read.
func (s *NotificationService) MarkRead(notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.store.Notifications()
	for i := range inbox {
		if inbox[i].ID == notificationID {
			inbox[i].Read = true
			return s.store.SaveNotifications(inbox)
		}
	}
	return nil
}

// MarkAllRead flags the whole inbox as read.
func (s *NotificationService) MarkAllRead() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.store.Notifications()
	for i := range inbox {
		inbox[i].Read = true
	}
	return s.store.SaveNotifications(inbox)
}

// Remove drops one entry from the inbox.
func (s *NotificationService) Remove(notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.store.Notifications()
	for i := range inbox {
		if inbox[i].ID == notificationID {
			inbox = append(inbox[:i], inbox[i+1:]...)
			return s.store.SaveNotifications(inbox)
		}
	}
	return nil
}

// Clear empties the inbox.
func (s *NotificationService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SaveNotifications([]entities.Notification{})
}
