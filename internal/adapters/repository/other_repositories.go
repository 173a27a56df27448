package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/astren/core/internal/ports"
)

// AreaRepositoryImpl implements the DevAreaRepository interface.
type AreaRepositoryImpl struct {
	db *sqlx.DB
}

// NewAreaRepository creates a new area repository.
func NewAreaRepository(db *sqlx.DB) ports.DevAreaRepository {
	return &AreaRepositoryImpl{db: db}
}

func (r *AreaRepositoryImpl) Create(ctx context.Context, area *ports.AreaRecord) error {
	query := `
		INSERT INTO areas (usuario_id, nombre, descripcion, color, icono, categoria, estado)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	if area.State == "" {
		area.State = "activa"
	}
	if area.Category == "" {
		area.Category = "general"
	}

	result, err := r.db.ExecContext(ctx, query,
		area.UserID, area.Name, area.Description, area.Color, area.Icon, area.Category, area.State,
	)
	if err != nil {
		return fmt.Errorf("create area: %w", err)
	}

	area.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create area id: %w", err)
	}
	return nil
}

func (r *AreaRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]ports.AreaRecord, error) {
	query := `
		SELECT id, usuario_id, nombre, descripcion, color, icono, categoria, estado
		FROM areas
		WHERE usuario_id = ?
		ORDER BY nombre ASC`

	areas := []ports.AreaRecord{}
	if err := r.db.SelectContext(ctx, &areas, query, userID); err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	return areas, nil
}

// GroupRepositoryImpl implements the DevGroupRepository interface.
type GroupRepositoryImpl struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sqlx.DB) ports.DevGroupRepository {
	return &GroupRepositoryImpl{db: db}
}

func (r *GroupRepositoryImpl) Create(ctx context.Context, group *ports.GroupRecord) error {
	query := `
		INSERT INTO grupos (usuario_id, nombre, color, icono, estado)
		VALUES (?, ?, ?, ?, ?)`

	if group.State == "" {
		group.State = "activa"
	}

	result, err := r.db.ExecContext(ctx, query,
		group.UserID, group.Name, group.Color, group.Icon, group.State,
	)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	group.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create group id: %w", err)
	}
	return nil
}

func (r *GroupRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]ports.GroupRecord, error) {
	query := `
		SELECT id, usuario_id, nombre, color, icono, estado
		FROM grupos
		WHERE usuario_id = ?
		ORDER BY nombre ASC`

	groups := []ports.GroupRecord{}
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}
