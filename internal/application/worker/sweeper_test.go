package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astren/core/internal/adapters/localstore"
	"github.com/astren/core/internal/application/guard"
	"github.com/astren/core/internal/application/services"
	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

type statusRecorder struct {
	nullGateway
	updates []int64
}

func (g *statusRecorder) UpdateTaskStatus(ctx context.Context, taskID int64, status entities.TaskStatus) error {
	g.updates = append(g.updates, taskID)
	return nil
}

// nullGateway satisfies ports.BackendGateway with empty answers.
type nullGateway struct{}

func (nullGateway) CreateTask(context.Context, ports.CreateTaskRequest) (*ports.CreateTaskResult, error) {
	return &ports.CreateTaskResult{}, nil
}
func (nullGateway) ListTasks(context.Context, int64) ([]entities.Task, error) { return nil, nil }
func (nullGateway) UpdateTask(context.Context, int64, ports.UpdateTaskRequest) error {
	return nil
}
func (nullGateway) UpdateTaskStatus(context.Context, int64, entities.TaskStatus) error {
	return nil
}
func (nullGateway) DeleteTask(context.Context, int64, int64) error { return nil }
func (nullGateway) ListAreas(context.Context, int64) ([]entities.Area, error) {
	return nil, nil
}
func (nullGateway) ListGroups(context.Context, int64) ([]entities.Group, error) {
	return nil, nil
}
func (nullGateway) Register(context.Context, ports.RegisterRequest) (int64, error) { return 0, nil }
func (nullGateway) Login(context.Context, ports.LoginRequest) (*ports.LoginResult, error) {
	return nil, nil
}

func TestSweepFlipsAndNotifies(t *testing.T) {
	store, err := localstore.New(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.SaveNotifications([]entities.Notification{}))
	require.NoError(t, store.SaveTasks([]entities.Task{
		{ID: 1, UserID: 7, Title: "Informe mensual", Status: entities.TaskStatusPending, DueDate: time.Now().Add(-time.Hour)},
		{ID: 2, UserID: 7, Title: "Entrega futura", Status: entities.TaskStatusPending, DueDate: time.Now().Add(time.Hour)},
		{ID: 3, UserID: 7, Title: "Hecha tarde", Status: entities.TaskStatusCompleted, DueDate: time.Now().Add(-time.Hour)},
	}))

	gw := &statusRecorder{}
	tasks := services.NewTaskService(gw, store, guard.NewRegistry(), nil, logger.NewNop())
	areas := services.NewAreaService(store, logger.NewNop())
	notifications := services.NewNotificationService(store, logger.NewNop())

	sweeper := NewSweeper(tasks, areas, notifications, time.Minute, logger.NewNop())
	sweeper.Sweep(context.Background())

	cached := tasks.CachedTasks(ports.TaskFilter{})
	byID := map[int64]entities.TaskStatus{}
	for _, task := range cached {
		byID[task.ID] = task.Status
	}
	assert.Equal(t, entities.TaskStatusOverdue, byID[1])
	assert.Equal(t, entities.TaskStatusPending, byID[2])
	assert.Equal(t, entities.TaskStatusCompleted, byID[3])

	// Only the flipped task was pushed and notified.
	assert.Equal(t, []int64{1}, gw.updates)
	inbox := notifications.List()
	require.Len(t, inbox, 1)
	assert.Equal(t, services.NotificationTypeOverdue, inbox[0].Type)
	assert.Equal(t, "Informe mensual", inbox[0].Message)
}

func TestSweepIsIdempotent(t *testing.T) {
	store, err := localstore.New(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.SaveNotifications([]entities.Notification{}))
	require.NoError(t, store.SaveTasks([]entities.Task{
		{ID: 1, UserID: 7, Title: "Informe", Status: entities.TaskStatusPending, DueDate: time.Now().Add(-time.Hour)},
	}))

	gw := &statusRecorder{}
	tasks := services.NewTaskService(gw, store, guard.NewRegistry(), nil, logger.NewNop())
	notifications := services.NewNotificationService(store, logger.NewNop())

	sweeper := NewSweeper(tasks, nil, notifications, time.Minute, logger.NewNop())
	sweeper.Sweep(context.Background())
	sweeper.Sweep(context.Background())

	// The second pass finds nothing pending past due.
	assert.Equal(t, []int64{1}, gw.updates)
	assert.Len(t, notifications.List(), 1)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	store, err := localstore.New(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	tasks := services.NewTaskService(nullGateway{}, store, guard.NewRegistry(), nil, logger.NewNop())
	sweeper := NewSweeper(tasks, nil, nil, 10*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweeper.Start(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
