package services

import (
	"time"

	"github.com/astren/core/internal/ports"
)

// BadgeService produces the navigation chrome counters. All numbers are
// computed from local state; a badge refresh never hits the network.
type BadgeService struct {
	tasks         *TaskService
	areas         *AreaService
	notifications *NotificationService
}

// NewBadgeService creates a new badge service.
func NewBadgeService(tasks *TaskService, areas *AreaService, notifications *NotificationService) *BadgeService {
	return &BadgeService{
		tasks:         tasks,
		areas:         areas,
		notifications: notifications,
	}
}

// Current computes the badge counters.
func (s *BadgeService) Current() ports.Badges {
	counts := countsFor(s.tasks.CachedTasks(ports.TaskFilter{}), time.Now())

	active := 0
	for _, a := range s.areas.List(ports.AreaFilter{}) {
		if !a.Archived {
			active++
		}
	}

	return ports.Badges{
		TasksToday:          counts.Today,
		TasksPending:        counts.Pending,
		UnreadNotifications: s.notifications.UnreadCount(),
		ActiveAreas:         active,
	}
}
