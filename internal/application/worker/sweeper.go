// Package worker runs the periodic overdue sweep: pending tasks whose
// due date has passed flip to overdue, the transition is pushed to the
// backend and an inbox notification is raised per flipped task.
package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/astren/core/internal/application/services"
	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
)

var (
	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "astren_overdue_sweeps_total",
		Help: "Completed overdue recomputation passes.",
	})
	sweepFlipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "astren_overdue_flipped_total",
		Help: "Tasks flipped from pending to overdue by the sweeper.",
	})
)

// Sweeper drives the status recomputation on a fixed interval. One
// sweep also runs immediately on Start so a long-closed app catches up
// without waiting for the first tick.
type Sweeper struct {
	tasks         *services.TaskService
	areas         *services.AreaService
	notifications *services.NotificationService
	interval      time.Duration
	logger        *logger.Logger
}

// NewSweeper creates a sweeper. A non-positive interval falls back to
// one minute.
func NewSweeper(tasks *services.TaskService, areas *services.AreaService, notifications *services.NotificationService, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		tasks:         tasks,
		areas:         areas,
		notifications: notifications,
		interval:      interval,
		logger:        log.WithComponent("sweeper"),
	}
}

// Start blocks until ctx is done, sweeping once up front and then on
// every tick.
func (w *Sweeper) Start(ctx context.Context) {
	w.Sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep(ctx)
		case <-ctx.Done():
			w.logger.Infow("Overdue sweeper stopping")
			return
		}
	}
}

// Sweep runs one recomputation pass. Backend pushes are best-effort;
// the local flip stands even when the push fails and the next full
// load reconciles.
func (w *Sweeper) Sweep(ctx context.Context) {
	start := time.Now()

	flipped := w.tasks.RecomputeStatuses(start)
	sweepsTotal.Inc()
	if len(flipped) == 0 {
		return
	}
	sweepFlipped.Add(float64(len(flipped)))

	for _, task := range flipped {
		if err := w.tasks.PushStatus(ctx, task.ID, entities.TaskStatusOverdue); err != nil {
			w.logger.WithError(err).Warnw("Pushing overdue status failed", "task_id", task.ID)
		}
		if w.notifications != nil {
			_, err := w.notifications.Push(task.UserID, services.NotificationTypeOverdue,
				"Tarea vencida", task.Title)
			if err != nil {
				w.logger.WithError(err).Warnw("Raising overdue notification failed", "task_id", task.ID)
			}
		}
	}

	if w.areas != nil {
		w.areas.RecomputeStats()
	}

	w.logger.Infow("Overdue sweep finished",
		"flipped", len(flipped),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
