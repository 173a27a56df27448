package ports

import (
	"context"
	"time"
)

// Record types and repositories for the local development backend. The
// dev backend persists the backend wire model as-is; the column naming
// stays on the repository side, these records carry canonical names.

// UserRecord is a dev backend account row.
type UserRecord struct {
	ID           int64     `db:"id"`
	Name         string    `db:"nombre"`
	LastName     string    `db:"apellido"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"contrasena_hash"`
	CreatedAt    time.Time `db:"creado_en"`
}

// TaskRecord is a dev backend task row. Dates stay in the wire format.
type TaskRecord struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"usuario_id"`
	Title       string    `db:"titulo"`
	Description string    `db:"descripcion"`
	AreaID      *int64    `db:"area_id"`
	GroupID     *int64    `db:"grupo_id"`
	DueDate     string    `db:"fecha_vencimiento"`
	Status      string    `db:"estado"`
	CompletedAt *string   `db:"completada_en"`
	Evidence    *string   `db:"evidencia"`
	CreatedAt   time.Time `db:"creado_en"`
	UpdatedAt   time.Time `db:"actualizado_en"`
}

// AreaRecord is a dev backend area row.
type AreaRecord struct {
	ID          int64  `db:"id"`
	UserID      int64  `db:"usuario_id"`
	Name        string `db:"nombre"`
	Description string `db:"descripcion"`
	Color       string `db:"color"`
	Icon        string `db:"icono"`
	Category    string `db:"categoria"`
	State       string `db:"estado"`
}

// GroupRecord is a dev backend group row.
type GroupRecord struct {
	ID     int64  `db:"id"`
	UserID int64  `db:"usuario_id"`
	Name   string `db:"nombre"`
	Color  string `db:"color"`
	Icon   string `db:"icono"`
	State  string `db:"estado"`
}

// DevUserRepository stores dev backend accounts.
type DevUserRepository interface {
	Create(ctx context.Context, user *UserRecord) error
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetByID(ctx context.Context, id int64) (*UserRecord, error)
}

// DevTaskRepository stores dev backend tasks.
type DevTaskRepository interface {
	Create(ctx context.Context, task *TaskRecord) error
	GetByID(ctx context.Context, id int64) (*TaskRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]TaskRecord, error)
	Update(ctx context.Context, task *TaskRecord) error
	UpdateStatus(ctx context.Context, id int64, status string, completedAt *string) error
	Delete(ctx context.Context, id, userID int64) (bool, error)
	ExistsDuplicate(ctx context.Context, userID int64, title, dueDate string) (bool, error)
}

// DevAreaRepository stores dev backend areas.
type DevAreaRepository interface {
	Create(ctx context.Context, area *AreaRecord) error
	ListByUser(ctx context.Context, userID int64) ([]AreaRecord, error)
}

// DevGroupRepository stores dev backend groups.
type DevGroupRepository interface {
	Create(ctx context.Context, group *GroupRecord) error
	ListByUser(ctx context.Context, userID int64) ([]GroupRecord, error)
}
