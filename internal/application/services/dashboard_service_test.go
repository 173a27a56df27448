package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astren/core/internal/application/guard"
	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

func TestDashboardRefreshProducesCounts(t *testing.T) {
	now := time.Now()
	gw := &fakeGateway{
		tasks: []entities.Task{
			{ID: 1, UserID: 7, Status: entities.TaskStatusPending, DueDate: now.Add(time.Minute)},
			{ID: 2, UserID: 7, Status: entities.TaskStatusPending, DueDate: now.Add(-time.Minute)},
			{ID: 3, UserID: 7, Status: entities.TaskStatusCompleted, DueDate: now.Add(-48 * time.Hour)},
		},
		areas: []entities.Area{{ID: 10, Name: "Remota", Category: entities.AreaCategoryPersonal}},
	}

	store := newTestStore(t)
	require.NoError(t, store.SaveAreas([]entities.Area{}))

	tasks := NewTaskService(gw, store, guard.NewRegistry(), nil, logger.NewNop())
	areas := NewAreaService(store, logger.NewNop())
	svc := NewDashboardService(gw, tasks, areas, logger.NewNop())

	counts, err := svc.Refresh(context.Background(), 7)
	require.NoError(t, err)

	// Task 2 was pending past due: the load sweep flips it to overdue.
	assert.Equal(t, 1, counts.Pending)
	assert.Equal(t, 1, counts.Overdue)
	assert.Equal(t, 1, counts.Completed)

	// Both the on-time pending task and the freshly overdue one fall due
	// today; completed tasks never count.
	assert.Equal(t, 2, counts.Today)

	// The backend-known area was merged in.
	assert.Len(t, areas.List(ports.AreaFilter{}), 1)
}

func TestTodayTasksExcludesOtherDays(t *testing.T) {
	now := time.Now()
	store := newTestStore(t)
	require.NoError(t, store.SaveTasks([]entities.Task{
		{ID: 1, Status: entities.TaskStatusPending, DueDate: now.Add(time.Minute)},
		{ID: 2, Status: entities.TaskStatusPending, DueDate: now.Add(96 * time.Hour)},
	}))

	tasks := NewTaskService(&fakeGateway{}, store, guard.NewRegistry(), nil, logger.NewNop())
	areas := NewAreaService(store, logger.NewNop())
	svc := NewDashboardService(&fakeGateway{}, tasks, areas, logger.NewNop())

	today := svc.TodayTasks()
	require.Len(t, today, 1)
	assert.Equal(t, int64(1), today[0].ID)
}

func TestBadgeCounters(t *testing.T) {
	now := time.Now()
	store := newTestStore(t)
	require.NoError(t, store.SaveTasks([]entities.Task{
		{ID: 1, Status: entities.TaskStatusPending, DueDate: now.Add(time.Minute)},
	}))
	require.NoError(t, store.SaveAreas([]entities.Area{
		{ID: 1, Name: "Trabajo"},
		{ID: 2, Name: "Viejo", Archived: true},
	}))
	require.NoError(t, store.SaveNotifications([]entities.Notification{
		{ID: "n1", Read: false},
		{ID: "n2", Read: true},
	}))

	tasks := NewTaskService(&fakeGateway{}, store, guard.NewRegistry(), nil, logger.NewNop())
	areas := NewAreaService(store, logger.NewNop())
	notifications := NewNotificationService(store, logger.NewNop())
	svc := NewBadgeService(tasks, areas, notifications)

	badges := svc.Current()
	assert.Equal(t, 1, badges.TasksToday)
	assert.Equal(t, 1, badges.TasksPending)
	assert.Equal(t, 1, badges.UnreadNotifications)
	assert.Equal(t, 1, badges.ActiveAreas)
}
