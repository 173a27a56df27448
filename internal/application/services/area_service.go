package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

// AreaService manages the locally-owned area collection. Area names are
// unique per user, compared case-insensitively after trimming.
type AreaService struct {
	store    ports.LocalStore
	validate *validator.Validate
	logger   *logger.Logger
	mu       sync.Mutex
}

// NewAreaService creates a new area service.
func NewAreaService(store ports.LocalStore, log *logger.Logger) *AreaService {
	return &AreaService{
		store:    store,
		validate: validator.New(),
		logger:   log.WithComponent("areas"),
	}
}

// List returns the areas, optionally narrowed by filter.
func (s *AreaService) List(filter ports.AreaFilter) []entities.Area {
	areas := s.store.Areas()

	out := make([]entities.Area, 0, len(areas))
	for _, a := range areas {
		if filter.Archived != nil && a.Archived != *filter.Archived {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Get returns one area by id.
func (s *AreaService) Get(areaID int64) (*entities.Area, error) {
	for _, a := range s.store.Areas() {
		if a.ID == areaID {
			return &a, nil
		}
	}
	return nil, entities.ErrAreaNotFound
}

// Create adds a new area. A name collision with any existing area of the
// user, regardless of case or surrounding whitespace, is rejected.
func (s *AreaService) Create(req ports.CreateAreaRequest) (*entities.Area, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}
	if req.Category != "" && !req.Category.IsValid() {
		return nil, &entities.ValidationError{Field: "category", Reason: "unknown category"}
	}
	if !entities.IsPaletteColor(req.Color) {
		return nil, &entities.ValidationError{Field: "color", Reason: "not a palette color"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	areas := s.store.Areas()
	for _, a := range areas {
		if a.NameEquals(req.Name) {
			return nil, entities.ErrDuplicateAreaName
		}
	}

	category := req.Category
	if category == "" {
		category = entities.AreaCategoryGeneral
	}

	now := time.Now()
	area := entities.Area{
		ID:          nextAreaID(areas),
		UserID:      req.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	areas = append(areas, area)
	if err := s.store.SaveAreas(areas); err != nil {
		return nil, err
	}

	s.logger.Infow("Area created", "area_id", area.ID, "name", area.Name)
	return &area, nil
}

// Update merges the set fields into an existing area. Renaming into a
// name held by a different area is rejected.
func (s *AreaService) Update(areaID int64, req ports.UpdateAreaRequest) (*entities.Area, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	areas := s.store.Areas()
	idx := -1
	for i := range areas {
		if areas[i].ID == areaID {
			idx = i
			continue
		}
		if req.Name != nil && areas[i].NameEquals(*req.Name) {
			return nil, entities.ErrDuplicateAreaName
		}
	}
	if idx < 0 {
		return nil, entities.ErrAreaNotFound
	}

	area := &areas[idx]
	if req.Name != nil {
		area.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		area.Description = *req.Description
	}
	if req.Color != nil {
		if !entities.IsPaletteColor(*req.Color) {
			return nil, &entities.ValidationError{Field: "color", Reason: "not a palette color"}
		}
		area.Color = *req.Color
	}
	if req.Icon != nil {
		area.Icon = *req.Icon
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, &entities.ValidationError{Field: "category", Reason: "unknown category"}
		}
		area.Category = *req.Category
	}
	area.UpdatedAt = time.Now()

	if err := s.store.SaveAreas(areas); err != nil {
		return nil, err
	}

	updated := *area
	s.logger.Infow("Area updated", "area_id", areaID)
	return &updated, nil
}

// Archive flags the area as archived without touching its tasks.
func (s *AreaService) Archive(areaID int64) (*entities.Area, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	areas := s.store.Areas()
	for i := range areas {
		if areas[i].ID != areaID {
			continue
		}
		areas[i].Archive(time.Now())
		if err := s.store.SaveAreas(areas); err != nil {
			return nil, err
		}
		archived := areas[i]
		s.logger.Infow("Area archived", "area_id", areaID)
		return &archived, nil
	}
	return nil, entities.ErrAreaNotFound
}

// Delete removes an area. An archived area that still has tasks in the
// task mirror blocks deletion until those tasks are gone.
func (s *AreaService) Delete(areaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	areas := s.store.Areas()
	idx := -1
	for i := range areas {
		if areas[i].ID == areaID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return entities.ErrAreaNotFound
	}

	taskCount := 0
	for _, t := range s.store.Tasks() {
		if t.AreaID != nil && *t.AreaID == areaID {
			taskCount++
		}
	}
	if !areas[idx].CanDelete(taskCount) {
		return entities.ErrAreaHasTasks
	}

	areas = append(areas[:idx], areas[idx+1:]...)
	if err := s.store.SaveAreas(areas); err != nil {
		return err
	}

	s.logger.Infow("Area deleted", "area_id", areaID, "orphaned_tasks", taskCount)
	return nil
}

// RecomputeStats refreshes the advisory per-area counters from the task
// mirror. The counters are display sugar and may lag the collection.
func (s *AreaService) RecomputeStats() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.store.Tasks()
	areas := s.store.Areas()

	for i := range areas {
		var stats entities.AreaStats
		for _, t := range tasks {
			if t.AreaID == nil || *t.AreaID != areas[i].ID {
				continue
			}
			stats.TotalTasks++
			switch t.Status {
			case entities.TaskStatusCompleted:
				stats.CompletedTasks++
			case entities.TaskStatusOverdue:
				stats.OverdueTasks++
			default:
				stats.PendingTasks++
			}
		}
		areas[i].Stats = stats
	}

	if err := s.store.SaveAreas(areas); err != nil {
		s.logger.WithError(err).Warnw("Persisting area stats failed")
	}
}

// MergeRemote folds backend-known areas into the local collection,
// keeping local edits for areas that exist on both sides.
func (s *AreaService) MergeRemote(remote []entities.Area) {
	s.mu.Lock()
	defer s.mu.Unlock()

	areas := s.store.Areas()
	byID := make(map[int64]int, len(areas))
	for i, a := range areas {
		byID[a.ID] = i
	}

	changed := false
	for _, r := range remote {
		if _, known := byID[r.ID]; known {
			continue
		}
		areas = append(areas, r)
		changed = true
	}

	if changed {
		if err := s.store.SaveAreas(areas); err != nil {
			s.logger.WithError(err).Warnw("Persisting merged areas failed")
		}
	}
}

func nextAreaID(areas []entities.Area) int64 {
	var max int64
	for _, a := range areas {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}

func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &entities.ValidationError{
			Field:  strings.ToLower(verrs[0].Field()),
			Reason: verrs[0].Tag(),
		}
	}
	return err
}
