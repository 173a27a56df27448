package services

import (
	"strings"
	"sync"
	"time"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

// ProfileService manages the display identity document.
type ProfileService struct {
	store  ports.LocalStore
	logger *logger.Logger
	mu     sync.Mutex
}

// NewProfileService creates a new profile service.
func NewProfileService(store ports.LocalStore, log *logger.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: log.WithComponent("profile"),
	}
}

// Current returns the profile document.
func (s *ProfileService) Current() entities.Profile {
	return s.store.Profile()
}

// Update replaces the profile document. Name and email must be present;
// avatar and bio are free-form.
func (s *ProfileService) Update(profile entities.Profile) (*entities.Profile, error) {
	if strings.TrimSpace(profile.Name) == "" {
		return nil, &entities.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !strings.Contains(profile.Email, "@") {
		return nil, &entities.ValidationError{Field: "email", Reason: "invalid email"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile.UpdatedAt = time.Now()
	if err := s.store.SaveProfile(profile); err != nil {
		return nil, err
	}

	s.logger.Infow("Profile updated", "user_id", profile.UserID)
	return &profile, nil
}
