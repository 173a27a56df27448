package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/astren/core/internal/application/guard"
	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

var loadsShared = promauto.NewCounter(prometheus.CounterOpts{
	Name: "astren_task_loads_shared_total",
	Help: "Task loads that joined an already in-flight fetch instead of issuing their own.",
})

// reputationRecorder receives the timeliness impact of completions and
// reversals. Satisfied by ReputationService.
type reputationRecorder interface {
	RecordImpact(taskID int64, points int, reason string) error
}

// TaskService owns the task lifecycle: it loads the authoritative
// collection from the backend, mirrors it locally, and runs every
// mutation through the backend with optimistic local updates.
//
// Concurrent loads for the same user collapse into one network call.
// Every local mutation advances a generation counter; a load that
// started before a mutation finds the counter moved and discards its
// result instead of clobbering newer local state.
type TaskService struct {
	gateway    ports.BackendGateway
	store      ports.LocalStore
	guards     *guard.Registry
	reputation reputationRecorder
	validate   *validator.Validate
	logger     *logger.Logger

	flight singleflight.Group

	mu         sync.Mutex
	cached     []entities.Task
	generation uint64
}

// NewTaskService creates a new task service.
func NewTaskService(gateway ports.BackendGateway, store ports.LocalStore, guards *guard.Registry, reputation reputationRecorder, log *logger.Logger) *TaskService {
	svc := &TaskService{
		gateway:    gateway,
		store:      store,
		guards:     guards,
		reputation: reputation,
		validate:   validator.New(),
		logger:     log.WithComponent("tasks"),
	}
	svc.cached = store.Tasks()
	return svc
}

// LoadTasks fetches the user's tasks from the backend and refreshes the
// local mirror. Concurrent calls for the same user share one request.
func (s *TaskService) LoadTasks(ctx context.Context, userID int64) ([]entities.Task, error) {
	key := fmt.Sprintf("tasks:load:%d", userID)
	v, err, shared := s.flight.Do(key, func() (interface{}, error) {
		startGen := s.currentGeneration()

		tasks, err := s.gateway.ListTasks(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("loading tasks: %w", err)
		}

		now := time.Now()
		for i := range tasks {
			tasks[i].MarkOverdue(now)
		}

		if !s.adopt(tasks, startGen) {
			s.logger.Debugw("Discarding stale task load", "user_id", userID)
			return s.CachedTasks(ports.TaskFilter{}), nil
		}
		return tasks, nil
	})
	if shared {
		loadsShared.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.([]entities.Task), nil
}

// CachedTasks returns the current in-memory collection without touching
// the network, optionally narrowed by filter.
func (s *TaskService) CachedTasks(filter ports.TaskFilter) []entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	out := make([]entities.Task, 0, len(s.cached))
	for _, t := range s.cached {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.AreaID != nil && (t.AreaID == nil || *t.AreaID != *filter.AreaID) {
			continue
		}
		if filter.DueToday && !t.IsDueToday(now) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Create submits a new task to the backend and appends the created task
// to the mirror. A second create for the same user while one is running
// is rejected; a backend duplicate answer resolves to a reload instead
// of an error.
func (s *TaskService) Create(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("task:create:%d", req.UserID)
	if err := s.guards.TryAcquire(key); err != nil {
		return nil, err
	}
	defer s.guards.Release(key)

	result, err := s.gateway.CreateTask(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if result.Duplicate {
		s.logger.Infow("Backend reported duplicate task, reloading", "user_id", req.UserID)
		if _, err := s.LoadTasks(ctx, req.UserID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if result.Task != nil {
		s.mu.Lock()
		s.cached = append(s.cached, *result.Task)
		s.generation++
		s.persistLocked()
		s.mu.Unlock()

		s.logger.Infow("Task created", "task_id", result.Task.ID, "title", result.Task.Title)
	}
	return result.Task, nil
}

// Update merges the set fields into the cached task, pushes the change
// to the backend, and reloads from the backend when the push fails so
// the mirror never drifts from the source of truth.
func (s *TaskService) Update(ctx context.Context, taskID int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	idx := s.indexOfLocked(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, entities.ErrTaskNotFound
	}

	task := &s.cached[idx]
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AreaID != nil {
		task.AreaID = req.AreaID
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	task.UpdatedAt = time.Now()
	updated := *task
	userID := task.UserID
	s.generation++
	s.persistLocked()
	s.mu.Unlock()

	if err := s.gateway.UpdateTask(ctx, taskID, req); err != nil {
		s.logger.WithError(err).Warnw("Task update rejected, reloading", "task_id", taskID)
		if _, reloadErr := s.LoadTasks(ctx, userID); reloadErr != nil {
			s.logger.WithError(reloadErr).Errorw("Reload after failed update also failed", "task_id", taskID)
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}

	s.logger.Infow("Task updated", "task_id", taskID)
	return &updated, nil
}

// Delete removes the task optimistically: it disappears from the mirror
// immediately, and comes back via a reload only if the backend rejects
// the deletion. A 404 from the backend means the task was already gone
// and counts as success. Concurrent deletes of the same task are
// rejected.
func (s *TaskService) Delete(ctx context.Context, taskID int64) error {
	key := fmt.Sprintf("task:delete:%d", taskID)
	if err := s.guards.TryAcquire(key); err != nil {
		return err
	}
	defer s.guards.Release(key)

	s.mu.Lock()
	idx := s.indexOfLocked(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return entities.ErrTaskNotFound
	}
	removed := s.cached[idx]
	s.cached = append(s.cached[:idx], s.cached[idx+1:]...)
	s.generation++
	s.persistLocked()
	s.mu.Unlock()

	err := s.gateway.DeleteTask(ctx, taskID, removed.UserID)
	switch {
	case err == nil:
		s.logger.Infow("Task deleted", "task_id", taskID)
		return nil
	case errors.Is(err, entities.ErrTaskNotFound):
		// Already gone on the backend; the optimistic removal stands.
		s.logger.Infow("Task already deleted on backend", "task_id", taskID)
		return nil
	default:
		s.logger.WithError(err).Warnw("Task delete rejected, reloading", "task_id", taskID)
		if _, reloadErr := s.LoadTasks(ctx, removed.UserID); reloadErr != nil {
			s.logger.WithError(reloadErr).Errorw("Reload after failed delete also failed", "task_id", taskID)
		}
		return fmt.Errorf("deleting task: %w", err)
	}
}

// ToggleCompletion flips a task between completed and pending. Completing
// a task in a work or school area requires attached evidence; completing
// stamps the reputation impact and records it, reopening reverses it.
func (s *TaskService) ToggleCompletion(ctx context.Context, taskID int64) (*entities.Task, error) {
	s.mu.Lock()
	idx := s.indexOfLocked(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, entities.ErrTaskNotFound
	}

	task := &s.cached[idx]
	now := time.Now()

	var target entities.TaskStatus
	var impact int

	if task.Status == entities.TaskStatusCompleted {
		impact = -task.ReputationImpact
		task.Reopen(now)
		target = entities.TaskStatusPending
	} else {
		category := s.categoryForLocked(task)
		if err := task.Complete(now, category); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		impact = task.ReputationImpact
		target = entities.TaskStatusCompleted
	}

	updated := *task
	userID := task.UserID
	s.generation++
	s.persistLocked()
	s.mu.Unlock()

	if err := s.gateway.UpdateTaskStatus(ctx, taskID, target); err != nil {
		s.logger.WithError(err).Warnw("Status change rejected, reloading", "task_id", taskID)
		if _, reloadErr := s.LoadTasks(ctx, userID); reloadErr != nil {
			s.logger.WithError(reloadErr).Errorw("Reload after failed status change also failed", "task_id", taskID)
		}
		return nil, fmt.Errorf("updating task status: %w", err)
	}

	if impact != 0 && s.reputation != nil {
		reason := "task completed"
		if target == entities.TaskStatusPending {
			reason = "completion reversed"
		}
		if err := s.reputation.RecordImpact(taskID, impact, reason); err != nil {
			s.logger.WithError(err).Warnw("Recording reputation impact failed", "task_id", taskID)
		}
	}

	s.logger.Infow("Task status toggled", "task_id", taskID, "status", target, "impact", impact)
	return &updated, nil
}

// AttachEvidence records an evidence reference on the task so a later
// completion can pass the evidence gate.
func (s *TaskService) AttachEvidence(taskID int64, ref string) (*entities.Task, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, &entities.ValidationError{Field: "evidence", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(taskID)
	if idx < 0 {
		return nil, entities.ErrTaskNotFound
	}

	s.cached[idx].AttachEvidence(ref, time.Now())
	s.generation++
	s.persistLocked()

	updated := s.cached[idx]
	return &updated, nil
}

// RecomputeStatuses sweeps the cached collection and flips pending tasks
// whose due date has passed to overdue. It returns the tasks that
// changed so the caller can push the transitions to the backend.
func (s *TaskService) RecomputeStatuses(now time.Time) []entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var flipped []entities.Task
	for i := range s.cached {
		if s.cached[i].MarkOverdue(now) {
			flipped = append(flipped, s.cached[i])
		}
	}
	if len(flipped) > 0 {
		s.generation++
		s.persistLocked()
	}
	return flipped
}

// PushStatus propagates a status already applied locally to the backend.
// Used by the overdue sweeper after RecomputeStatuses.
func (s *TaskService) PushStatus(ctx context.Context, taskID int64, status entities.TaskStatus) error {
	err := s.gateway.UpdateTaskStatus(ctx, taskID, status)
	if errors.Is(err, entities.ErrTaskNotFound) {
		return nil
	}
	return err
}

func (s *TaskService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// adopt installs a freshly fetched collection unless a local mutation
// happened after the fetch started.
func (s *TaskService) adopt(tasks []entities.Task, startGen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != startGen {
		return false
	}
	s.cached = tasks
	s.persistLocked()
	return true
}

func (s *TaskService) indexOfLocked(taskID int64) int {
	for i := range s.cached {
		if s.cached[i].ID == taskID {
			return i
		}
	}
	return -1
}

// categoryForLocked resolves the task's area category from the area
// mirror. Tasks without an area, or with an area no longer present,
// complete under the general rules.
func (s *TaskService) categoryForLocked(task *entities.Task) entities.AreaCategory {
	if task.AreaID == nil {
		return entities.AreaCategoryGeneral
	}
	for _, area := range s.store.Areas() {
		if area.ID == *task.AreaID {
			return area.Category
		}
	}
	return entities.AreaCategoryGeneral
}

func (s *TaskService) persistLocked() {
	if err := s.store.SaveTasks(s.cached); err != nil {
		s.logger.WithError(err).Warnw("Persisting task mirror failed")
	}
}

func (s *TaskService) validateRequest(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return asValidationError(err)
	}
	return nil
}
