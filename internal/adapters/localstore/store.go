// Package localstore persists application state as wholesale-JSON documents
// under a data directory, one file per key. It is the disk analog of the
// browser storage the managers mirror into: collections are serialized in
// full on every write, concurrent writers to a key are last-writer-wins and
// a missing or corrupt value silently falls back to the default dataset.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
)

// Persisted keys. Kept as file basenames so a data directory is readable
// next to the browser's storage keys.
const (
	KeyTasks              = "astren_tasks"
	KeyAreas              = "astren_areas"
	KeyGroups             = "astren_groups"
	KeyNotifications      = "astren_notifications"
	KeyProfile            = "astren_profile"
	KeySettings           = "astren_settings"
	KeyReputation         = "astren_reputation"
	KeyReputationHistory  = "astren_reputation_history"
	KeySession            = "astren_user"
	KeySessionUserID      = "astren_usuario_id"
	KeyRememberMe         = "astren_remember_me"
)

// Store is a file-backed LocalStore.
type Store struct {
	dir    string
	logger *logger.Logger
	mu     sync.Mutex
}

// New creates the data directory if needed and returns a store over it.
func New(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir, logger: log}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// read unmarshals the value for key into dest. It returns false when the
// value is absent or corrupt; corrupt values are discarded and logged.
func (s *Store) read(key string, dest interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.LogStoreFallback(key, err)
		_ = os.Remove(s.path(key))
		return false
	}
	return true
}

// write serializes value wholesale under key.
func (s *Store) write(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Tasks returns the mirrored task collection. The mirror is a fallback
// render cache; the network fetch is always authoritative over it.
func (s *Store) Tasks() []entities.Task {
	var tasks []entities.Task
	if !s.read(KeyTasks, &tasks) {
		return DefaultTasks()
	}
	return tasks
}

// SaveTasks mirrors the task collection wholesale.
func (s *Store) SaveTasks(tasks []entities.Task) error {
	return s.write(KeyTasks, tasks)
}

// Areas returns the area collection, seeding the demo dataset on first use.
func (s *Store) Areas() []entities.Area {
	var areas []entities.Area
	if !s.read(KeyAreas, &areas) {
		return DefaultAreas()
	}
	return areas
}

func (s *Store) SaveAreas(areas []entities.Area) error {
	return s.write(KeyAreas, areas)
}

func (s *Store) Groups() []entities.Group {
	var groups []entities.Group
	if !s.read(KeyGroups, &groups) {
		return nil
	}
	return groups
}

func (s *Store) SaveGroups(groups []entities.Group) error {
	return s.write(KeyGroups, groups)
}

func (s *Store) Notifications() []entities.Notification {
	var notifications []entities.Notification
	if !s.read(KeyNotifications, &notifications) {
		return DefaultNotifications()
	}
	return notifications
}

func (s *Store) SaveNotifications(notifications []entities.Notification) error {
	return s.write(KeyNotifications, notifications)
}

func (s *Store) Reputation() entities.Reputation {
	var rep entities.Reputation
	if !s.read(KeyReputation, &rep) {
		return DefaultReputation()
	}
	return rep
}

func (s *Store) SaveReputation(rep entities.Reputation) error {
	return s.write(KeyReputation, rep)
}

func (s *Store) ReputationHistory() []entities.ReputationEvent {
	var history []entities.ReputationEvent
	if !s.read(KeyReputationHistory, &history) {
		return nil
	}
	return history
}

func (s *Store) SaveReputationHistory(history []entities.ReputationEvent) error {
	return s.write(KeyReputationHistory, history)
}

func (s *Store) Settings() entities.Settings {
	var settings entities.Settings
	if !s.read(KeySettings, &settings) {
		return DefaultSettings()
	}
	return settings
}

func (s *Store) SaveSettings(settings entities.Settings) error {
	return s.write(KeySettings, settings)
}

func (s *Store) Profile() entities.Profile {
	var profile entities.Profile
	if !s.read(KeyProfile, &profile) {
		return DefaultProfile()
	}
	return profile
}

func (s *Store) SaveProfile(profile entities.Profile) error {
	return s.write(KeyProfile, profile)
}

// Session returns the persisted identity. A session saved without
// remember-me does not survive across runs, matching the original's
// session-scoped storage.
func (s *Store) Session() (entities.Session, bool) {
	var remember bool
	if !s.read(KeyRememberMe, &remember) || !remember {
		return entities.Session{}, false
	}

	var session entities.Session
	if !s.read(KeySession, &session) {
		return entities.Session{}, false
	}
	return session, true
}

// SaveSession persists the identity pair and the remember-me flag.
func (s *Store) SaveSession(session entities.Session) error {
	if err := s.write(KeySession, session); err != nil {
		return err
	}
	if err := s.write(KeySessionUserID, session.UserID); err != nil {
		return err
	}
	return s.write(KeyRememberMe, session.RememberMe)
}

// ClearSession forgets the identity pair and the remember flag.
func (s *Store) ClearSession() error {
	for _, key := range []string{KeySession, KeySessionUserID, KeyRememberMe} {
		if err := s.remove(key); err != nil {
			return err
		}
	}
	return nil
}
