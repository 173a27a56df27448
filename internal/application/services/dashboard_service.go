package services

import (
	"context"
	"fmt"
	"time"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

// DashboardService assembles the landing view: one refresh loads tasks,
// areas and groups, recomputes statuses and stats, and produces the
// headline counters.
type DashboardService struct {
	gateway ports.BackendGateway
	tasks   *TaskService
	areas   *AreaService
	logger  *logger.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(gateway ports.BackendGateway, tasks *TaskService, areas *AreaService, log *logger.Logger) *DashboardService {
	return &DashboardService{
		gateway: gateway,
		tasks:   tasks,
		areas:   areas,
		logger:  log.WithComponent("dashboard"),
	}
}

// Refresh reloads the backend collections and returns the headline
// counts. Area and group loads are best-effort; a failed side load
// keeps the last known local data instead of failing the dashboard.
func (s *DashboardService) Refresh(ctx context.Context, userID int64) (ports.DashboardCounts, error) {
	tasks, err := s.tasks.LoadTasks(ctx, userID)
	if err != nil {
		return ports.DashboardCounts{}, fmt.Errorf("refreshing dashboard: %w", err)
	}

	if remote, err := s.gateway.ListAreas(ctx, userID); err != nil {
		s.logger.WithError(err).Warnw("Area load failed, keeping local areas", "user_id", userID)
	} else {
		s.areas.MergeRemote(remote)
	}
	s.areas.RecomputeStats()

	return countsFor(tasks, time.Now()), nil
}

// Counts computes the headline numbers from the cached collection
// without touching the network.
func (s *DashboardService) Counts() ports.DashboardCounts {
	return countsFor(s.tasks.CachedTasks(ports.TaskFilter{}), time.Now())
}

// TodayTasks returns the tasks falling due on the current local date.
func (s *DashboardService) TodayTasks() []entities.Task {
	return s.tasks.CachedTasks(ports.TaskFilter{DueToday: true})
}

func countsFor(tasks []entities.Task, now time.Time) ports.DashboardCounts {
	var counts ports.DashboardCounts
	for _, t := range tasks {
		switch t.Status {
		case entities.TaskStatusPending:
			counts.Pending++
		case entities.TaskStatusCompleted:
			counts.Completed++
		case entities.TaskStatusOverdue:
			counts.Overdue++
		}
		if t.IsDueToday(now) && t.Status != entities.TaskStatusCompleted {
			counts.Today++
		}
	}
	return counts
}
