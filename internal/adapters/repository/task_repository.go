package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/ports"
)

// TaskRepositoryImpl implements the DevTaskRepository interface.
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sqlx.DB) ports.DevTaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *ports.TaskRecord) error {
	query := `
		INSERT INTO tareas (usuario_id, titulo, descripcion, area_id, grupo_id, fecha_vencimiento, estado)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	if task.Status == "" {
		task.Status = "pendiente"
	}

	result, err := r.db.ExecContext(ctx, query,
		task.UserID, task.Title, task.Description,
		task.AreaID, task.GroupID, task.DueDate, task.Status,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	task.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create task id: %w", err)
	}
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id int64) (*ports.TaskRecord, error) {
	query := `
		SELECT id, usuario_id, titulo, descripcion, area_id, grupo_id,
			fecha_vencimiento, estado, completada_en, evidencia, creado_en, actualizado_en
		FROM tareas
		WHERE id = ?`

	var task ports.TaskRecord
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]ports.TaskRecord, error) {
	query := `
		SELECT id, usuario_id, titulo, descripcion, area_id, grupo_id,
			fecha_vencimiento, estado, completada_en, evidencia, creado_en, actualizado_en
		FROM tareas
		WHERE usuario_id = ?
		ORDER BY fecha_vencimiento ASC`

	tasks := []ports.TaskRecord{}
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *ports.TaskRecord) error {
	query := `
		UPDATE tareas
		SET titulo = ?, descripcion = ?, area_id = ?, fecha_vencimiento = ?,
			evidencia = ?, actualizado_en = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.AreaID, task.DueDate, task.Evidence, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows: %w", err)
	}
	if rows == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) UpdateStatus(ctx context.Context, id int64, status string, completedAt *string) error {
	query := `
		UPDATE tareas
		SET estado = ?, completada_en = ?, actualizado_en = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, completedAt, id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task status rows: %w", err)
	}
	if rows == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id, userID int64) (bool, error) {
	query := `DELETE FROM tareas WHERE id = ? AND usuario_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task rows: %w", err)
	}
	return rows > 0, nil
}

func (r *TaskRepositoryImpl) ExistsDuplicate(ctx context.Context, userID int64, title, dueDate string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM tareas
		WHERE usuario_id = ? AND titulo = ? AND fecha_vencimiento = ?`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, title, dueDate); err != nil {
		return false, fmt.Errorf("check duplicate task: %w", err)
	}
	return count > 0, nil
}
