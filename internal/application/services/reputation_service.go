package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

// ReputationService maintains the per-user timeliness score and its
// event history. Points never drop below zero; the level tier follows
// the accumulated total.
type ReputationService struct {
	store  ports.LocalStore
	logger *logger.Logger
	mu     sync.Mutex
}

// NewReputationService creates a new reputation service.
func NewReputationService(store ports.LocalStore, log *logger.Logger) *ReputationService {
	return &ReputationService{
		store:  store,
		logger: log.WithComponent("reputation"),
	}
}

// Current returns the score document.
func (s *ReputationService) Current() entities.Reputation {
	return s.store.Reputation()
}

// History returns the recorded impact events, newest first.
func (s *ReputationService) History() []entities.ReputationEvent {
	return s.store.ReputationHistory()
}

// RecordImpact folds a completion impact into the score and appends a
// history event. A zero impact is ignored.
func (s *ReputationService) RecordImpact(taskID int64, points int, reason string) error {
	if points == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	rep := s.store.Reputation()
	rep.Apply(points, now)
	if err := s.store.SaveReputation(rep); err != nil {
		return err
	}

	event := entities.ReputationEvent{
		ID:         uuid.NewString(),
		UserID:     rep.UserID,
		TaskID:     taskID,
		Points:     points,
		Reason:     reason,
		OccurredAt: now,
	}
	history := append([]entities.ReputationEvent{event}, s.store.ReputationHistory()...)
	if err := s.store.SaveReputationHistory(history); err != nil {
		return err
	}

	s.logger.Infow("Reputation impact recorded",
		"task_id", taskID,
		"points", points,
		"total", rep.TotalPoints,
		"level", rep.Level,
	)
	return nil
}
