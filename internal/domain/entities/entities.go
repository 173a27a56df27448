package entities

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Common errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrAreaNotFound       = errors.New("area not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEvidenceRequired   = errors.New("task requires evidence before completion")
	ErrDuplicateAreaName  = errors.New("an area with that name already exists")
	ErrAreaHasTasks       = errors.New("area still has associated tasks")
	ErrOperationInFlight  = errors.New("an identical operation is already in flight")
	ErrNoSession          = errors.New("no active session")
)

// ValidationError marks a recoverable user-input failure. Operations that
// return one leave all state untouched; callers surface it as a notice.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Field + ": " + e.Reason
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Enums and types
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusOverdue   TaskStatus = "overdue"
)

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusOverdue:
		return true
	default:
		return false
	}
}

// AreaCategory classifies an area for completion rules. Work and school
// areas demand evidence before a task can be completed.
type AreaCategory string

const (
	AreaCategoryPersonal AreaCategory = "personal"
	AreaCategoryWork     AreaCategory = "work"
	AreaCategorySchool   AreaCategory = "school"
	AreaCategoryGeneral  AreaCategory = "general"
)

func (ac AreaCategory) IsValid() bool {
	switch ac {
	case AreaCategoryPersonal, AreaCategoryWork, AreaCategorySchool, AreaCategoryGeneral:
		return true
	default:
		return false
	}
}

// RequiresEvidence reports whether tasks in this category need an evidence
// attachment before they may transition to completed.
func (ac AreaCategory) RequiresEvidence() bool {
	return ac == AreaCategoryWork || ac == AreaCategorySchool
}

// Reputation impact bounds for timeliness scoring.
const (
	ReputationMaxBonus    = 20
	ReputationMaxPenalty  = -20
	ReputationOnTimeBonus = 5
	ReputationPerDay      = 2
)

// Task is the central entity. Status is derived and maintained through the
// lifecycle methods below, never set freely.
type Task struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	AreaID            *int64     `json:"area_id"`
	GroupID           *int64     `json:"group_id"`
	DueDate           time.Time  `json:"due_date"`
	Status            TaskStatus `json:"status"`
	CompletedAt       *time.Time `json:"completed_at"`
	Evidence          *string    `json:"evidence"`
	EvidenceValidated bool       `json:"evidence_validated"`
	ReputationImpact  int        `json:"reputation_impact"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AreaStats are advisory display counters cached on an area. They are
// recomputed best-effort from the task mirror and may drift from the
// authoritative task collection.
type AreaStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	OverdueTasks   int `json:"overdue_tasks"`
}

// Area groups tasks under a user-defined category.
type Area struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Color       string       `json:"color"`
	Icon        string       `json:"icon"`
	Category    AreaCategory `json:"category"`
	Archived    bool         `json:"archived"`
	Stats       AreaStats    `json:"stats"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Group mirrors the backend grupos collection, read-only on this side.
type Group struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

// Notification is a locally-owned inbox entry.
type Notification struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// ReputationLevel is the tier derived from accumulated points.
type ReputationLevel string

const (
	ReputationBronze  ReputationLevel = "bronze"
	ReputationSilver  ReputationLevel = "silver"
	ReputationGold    ReputationLevel = "gold"
	ReputationDiamond ReputationLevel = "diamond"
)

// Reputation is the per-user timeliness score document.
type Reputation struct {
	UserID      int64           `json:"user_id"`
	TotalPoints int             `json:"total_points"`
	Score       float64         `json:"score"`
	Level       ReputationLevel `json:"level"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ReputationEvent is one appended history entry per completion impact.
type ReputationEvent struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	TaskID     int64     `json:"task_id"`
	Points     int       `json:"points"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Settings is the user preference document.
type Settings struct {
	UserID        int64  `json:"user_id"`
	Language      string `json:"language"`
	Theme         string `json:"theme"`
	EmailUpdates  bool   `json:"email_updates"`
	TaskReminders bool   `json:"task_reminders"`
	WeeklyDigest  bool   `json:"weekly_digest"`
}

// Profile is the display identity document.
type Profile struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is the authenticated identity held between page loads.
type Session struct {
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Token      string    `json:"token,omitempty"`
	RememberMe bool      `json:"remember_me"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// AreaPalette is the fixed set of selectable area colors.
var AreaPalette = map[string]string{
	"blue":     "#93c5fd",
	"green":    "#86efac",
	"purple":   "#c4b5fd",
	"orange":   "#fed7aa",
	"red":      "#fca5a5",
	"pink":     "#f9a8d4",
	"yellow":   "#fef3c7",
	"mint":     "#a7f3d0",
	"sky":      "#bae6fd",
	"coral":    "#fecaca",
	"lavender": "#e9d5ff",
}

// IsPaletteColor reports whether name is one of the fixed area colors.
func IsPaletteColor(name string) bool {
	_, ok := AreaPalette[name]
	return ok
}

// Business logic methods for Task

// IsOverdue reports whether the task's due date has passed and it is not
// completed. Due dates are wall-clock local time; no timezone conversion.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status == TaskStatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// IsDueToday reports whether the task falls due on the current local date.
func (t *Task) IsDueToday(now time.Time) bool {
	y1, m1, d1 := t.DueDate.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// MarkOverdue flips a pending task whose due date has passed. It is the only
// path into the overdue state and never fires on completed tasks.
func (t *Task) MarkOverdue(now time.Time) bool {
	if t.Status != TaskStatusPending {
		return false
	}
	if !t.DueDate.Before(now) {
		return false
	}
	t.Status = TaskStatusOverdue
	t.UpdatedAt = now
	return true
}

// Complete transitions a pending or overdue task to completed. category is
// the task's area category (AreaCategoryGeneral when the task has no area).
// When the category demands evidence and none is attached the transition is
// rejected and the task is left untouched.
func (t *Task) Complete(now time.Time, category AreaCategory) error {
	if t.Status == TaskStatusCompleted {
		return nil
	}
	if category.RequiresEvidence() && t.Evidence == nil {
		return ErrEvidenceRequired
	}

	completedAt := now
	t.Status = TaskStatusCompleted
	t.CompletedAt = &completedAt
	t.ReputationImpact = ReputationImpactFor(t.DueDate, completedAt)
	t.UpdatedAt = now
	return nil
}

// Reopen reverses a completed task back to pending, clearing everything the
// completion stamped. Title, description, area and due date are untouched.
func (t *Task) Reopen(now time.Time) {
	if t.Status != TaskStatusCompleted {
		return
	}
	t.Status = TaskStatusPending
	t.CompletedAt = nil
	t.Evidence = nil
	t.EvidenceValidated = false
	t.ReputationImpact = 0
	t.UpdatedAt = now
}

// AttachEvidence records an evidence reference. Validation state always
// resets when evidence is (re)attached.
func (t *Task) AttachEvidence(ref string, now time.Time) {
	t.Evidence = &ref
	t.EvidenceValidated = false
	t.UpdatedAt = now
}

// ReputationImpactFor computes the timeliness score delta for a completion:
// early completions earn min(20, daysEarly*2), a completion on the due day
// earns a flat +5 and late ones cost max(-20, daysLate*2). Day difference
// uses ceiling semantics on the raw timestamp delta.
func ReputationImpactFor(dueDate, completedAt time.Time) int {
	daysEarly := int(math.Ceil(dueDate.Sub(completedAt).Hours() / 24))

	switch {
	case daysEarly > 0:
		bonus := daysEarly * ReputationPerDay
		if bonus > ReputationMaxBonus {
			bonus = ReputationMaxBonus
		}
		return bonus
	case daysEarly == 0:
		return ReputationOnTimeBonus
	default:
		penalty := daysEarly * ReputationPerDay
		if penalty < ReputationMaxPenalty {
			penalty = ReputationMaxPenalty
		}
		return penalty
	}
}

// Business logic methods for Area

// NameEquals compares area names the way uniqueness is enforced:
// case-insensitive, ignoring surrounding whitespace.
func (a *Area) NameEquals(name string) bool {
	return strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(name))
}

// CanDelete reports whether the area may be deleted given the number of
// tasks still associated with it. An archived area keeps its tasks and
// blocks deletion until they are gone.
func (a *Area) CanDelete(taskCount int) bool {
	if a.Archived && taskCount > 0 {
		return false
	}
	return true
}

// Archive flags the area as archived. Archiving never cascades to tasks.
func (a *Area) Archive(now time.Time) {
	a.Archived = true
	a.UpdatedAt = now
}

// Business logic methods for Reputation

// LevelForPoints maps accumulated points to a tier.
func LevelForPoints(points int) ReputationLevel {
	switch {
	case points >= 500:
		return ReputationDiamond
	case points >= 200:
		return ReputationGold
	case points >= 50:
		return ReputationSilver
	default:
		return ReputationBronze
	}
}

// Apply folds a completion impact into the score document.
func (r *Reputation) Apply(points int, now time.Time) {
	r.TotalPoints += points
	if r.TotalPoints < 0 {
		r.TotalPoints = 0
	}
	r.Level = LevelForPoints(r.TotalPoints)
	r.Score = scoreForPoints(r.TotalPoints)
	r.UpdatedAt = now
}

// scoreForPoints compresses points into the 0-5 star display scale.
func scoreForPoints(points int) float64 {
	score := float64(points) / 100.0
	if score > 5 {
		return 5
	}
	return score
}
