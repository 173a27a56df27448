package localstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/astren/core/internal/domain/entities"
)

// Default datasets used when a persisted value is absent or corrupt. They
// mirror the demo data a fresh install shows before any backend sync.

// DefaultTasks is empty: tasks only ever come from the backend.
func DefaultTasks() []entities.Task {
	return []entities.Task{}
}

// DefaultAreas seeds the four starter areas.
func DefaultAreas() []entities.Area {
	now := time.Now()
	return []entities.Area{
		{
			ID:          1,
			Name:        "Trabajo",
			Description: "Tareas y proyectos laborales",
			Color:       "blue",
			Icon:        "fa-briefcase",
			Category:    entities.AreaCategoryWork,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          2,
			Name:        "Personal",
			Description: "Vida personal y hogar",
			Color:       "green",
			Icon:        "fa-user",
			Category:    entities.AreaCategoryPersonal,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          3,
			Name:        "Escuela",
			Description: "Estudios y entregas",
			Color:       "orange",
			Icon:        "fa-graduation-cap",
			Category:    entities.AreaCategorySchool,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          4,
			Name:        "Salud",
			Description: "Ejercicio y bienestar",
			Color:       "purple",
			Icon:        "fa-heartbeat",
			Category:    entities.AreaCategoryPersonal,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// DefaultNotifications seeds a single welcome entry.
func DefaultNotifications() []entities.Notification {
	return []entities.Notification{
		{
			ID:        uuid.NewString(),
			Type:      "welcome",
			Title:     "Bienvenido a Astren",
			Message:   "Crea tu primera tarea para empezar a construir tu reputación.",
			CreatedAt: time.Now(),
		},
	}
}

// DefaultReputation starts every user at bronze with an empty score.
func DefaultReputation() entities.Reputation {
	return entities.Reputation{
		Level:     entities.ReputationBronze,
		UpdatedAt: time.Now(),
	}
}

// DefaultSettings are the out-of-the-box preferences.
func DefaultSettings() entities.Settings {
	return entities.Settings{
		Language:      "es",
		Theme:         "light",
		EmailUpdates:  true,
		TaskReminders: true,
		WeeklyDigest:  false,
	}
}

// DefaultProfile is an empty identity document.
func DefaultProfile() entities.Profile {
	return entities.Profile{UpdatedAt: time.Now()}
}
