package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

// AuthService handles account registration, login and the persisted
// session. A session saved with remember-me survives across runs; one
// without it is dropped on the next start.
type AuthService struct {
	gateway  ports.BackendGateway
	store    ports.LocalStore
	validate *validator.Validate
	logger   *logger.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(gateway ports.BackendGateway, store ports.LocalStore, log *logger.Logger) *AuthService {
	return &AuthService{
		gateway:  gateway,
		store:    store,
		validate: validator.New(),
		logger:   log.WithComponent("auth"),
	}
}

// Register creates a backend account and seeds the local profile.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (int64, error) {
	if err := s.validate.Struct(req); err != nil {
		return 0, asValidationError(err)
	}

	userID, err := s.gateway.Register(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("registering user: %w", err)
	}

	profile := entities.Profile{
		UserID:    userID,
		Name:      req.Name,
		LastName:  req.LastName,
		Email:     req.Email,
		UpdatedAt: time.Now(),
	}
	if err := s.store.SaveProfile(profile); err != nil {
		s.logger.WithError(err).Warnw("Seeding profile after registration failed", "user_id", userID)
	}

	s.logger.Infow("User registered", "user_id", userID, "email", req.Email)
	return userID, nil
}

// Login authenticates against the backend and persists the session.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*entities.Session, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	result, err := s.gateway.Login(ctx, req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidCredentials) {
			s.logger.Warnw("Login rejected", "email", req.Email)
			return nil, err
		}
		return nil, fmt.Errorf("logging in: %w", err)
	}

	session := entities.Session{
		UserID:     result.UserID,
		Name:       result.Name,
		Email:      result.Email,
		Token:      result.Token,
		RememberMe: req.RememberMe,
		LoggedInAt: time.Now(),
	}
	if err := s.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.logger.Infow("User logged in", "user_id", session.UserID, "remember_me", session.RememberMe)
	return &session, nil
}

// CurrentSession restores the persisted session. Sessions saved without
// remember-me do not survive a restart; callers get ErrNoSession and
// route to login.
func (s *AuthService) CurrentSession() (*entities.Session, error) {
	session, ok := s.store.Session()
	if !ok {
		return nil, entities.ErrNoSession
	}
	return &session, nil
}

// Logout drops the persisted session.
func (s *AuthService) Logout() error {
	session, ok := s.store.Session()
	if err := s.store.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if ok {
		s.logger.Infow("User logged out", "user_id", session.UserID)
	}
	return nil
}
