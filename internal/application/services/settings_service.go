package services

import (
	"sync"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

var supportedLanguages = map[string]bool{"es": true, "en": true}
var supportedThemes = map[string]bool{"light": true, "dark": true}

// SettingsService manages the user preference document.
type SettingsService struct {
	store  ports.LocalStore
	logger *logger.Logger
	mu     sync.Mutex
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store ports.LocalStore, log *logger.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		logger: log.WithComponent("settings"),
	}
}

// Current returns the preference document.
func (s *SettingsService) Current() entities.Settings {
	return s.store.Settings()
}

// Update replaces the preference document after validating the enum
// fields.
func (s *SettingsService) Update(settings entities.Settings) (*entities.Settings, error) {
	if !supportedLanguages[settings.Language] {
		return nil, &entities.ValidationError{Field: "language", Reason: "unsupported language"}
	}
	if !supportedThemes[settings.Theme] {
		return nil, &entities.ValidationError{Field: "theme", Reason: "unsupported theme"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveSettings(settings); err != nil {
		return nil, err
	}

	s.logger.Infow("Settings updated", "language", settings.Language, "theme", settings.Theme)
	return &settings, nil
}
