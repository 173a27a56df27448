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

// UserRepositoryImpl implements the DevUserRepository interface.
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) ports.DevUserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *ports.UserRecord) error {
	query := `
		INSERT INTO usuarios (nombre, apellido, email, contrasena_hash)
		VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.LastName, user.Email, user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	user.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user id: %w", err)
	}
	return nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*ports.UserRecord, error) {
	query := `
		SELECT id, nombre, apellido, email, contrasena_hash, creado_en
		FROM usuarios
		WHERE email = ?`

	var user ports.UserRecord
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id int64) (*ports.UserRecord, error) {
	query := `
		SELECT id, nombre, apellido, email, contrasena_hash, creado_en
		FROM usuarios
		WHERE id = ?`

	var user ports.UserRecord
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}
