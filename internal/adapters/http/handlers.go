// Package http holds the dev backend's request handlers. The dev
// backend speaks the production backend's wire contract so the client
// can point at either without changes.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/config"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

const wireTimeLayout = "2006-01-02 15:04"

// TaskHandler serves the tareas endpoints.
type TaskHandler struct {
	tasks  ports.DevTaskRepository
	logger *logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks ports.DevTaskRepository, log *logger.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: log}
}

type createTareaRequest struct {
	UsuarioID        int64  `json:"usuario_id" validate:"required"`
	Titulo           string `json:"titulo" validate:"required,min=3"`
	Descripcion      string `json:"descripcion"`
	AreaID           *int64 `json:"area_id"`
	GrupoID          *int64 `json:"grupo_id"`
	FechaVencimiento string `json:"fecha_vencimiento" validate:"required"`
}

type updateTareaRequest struct {
	Titulo           *string `json:"titulo" validate:"omitempty,min=3"`
	Descripcion      *string `json:"descripcion"`
	AreaID           *int64  `json:"area_id"`
	FechaVencimiento *string `json:"fecha_vencimiento"`
	Evidencia        *string `json:"evidencia"`
}

type estadoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=pendiente completada vencida"`
}

type deleteTareaRequest struct {
	UsuarioID int64 `json:"usuario_id"`
}

// Create handles POST /tareas. A task with the same title and due date
// for the same user answers "Tarea no creada" instead of a second row.
func (h *TaskHandler) Create(c echo.Context) error {
	var req createTareaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}
	if _, err := time.ParseInLocation(wireTimeLayout, req.FechaVencimiento, time.Local); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Fecha inválida"})
	}

	ctx := c.Request().Context()

	exists, err := h.tasks.ExistsDuplicate(ctx, req.UsuarioID, req.Titulo, req.FechaVencimiento)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}
	if exists {
		return c.JSON(http.StatusOK, map[string]string{"mensaje": "Tarea no creada"})
	}

	record := ports.TaskRecord{
		UserID:      req.UsuarioID,
		Title:       req.Titulo,
		Description: req.Descripcion,
		AreaID:      req.AreaID,
		GroupID:     req.GrupoID,
		DueDate:     req.FechaVencimiento,
		Status:      "pendiente",
	}
	if err := h.tasks.Create(ctx, &record); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	h.logger.Infow("Task created", "task_id", record.ID, "user_id", record.UserID)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"mensaje": "Tarea creada",
		"tarea":   tareaJSON(record),
	})
}

// List handles GET /tareas/:userId.
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Usuario inválido"})
	}

	records, err := h.tasks.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	out := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		out = append(out, tareaJSON(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PUT /tareas/:id.
func (h *TaskHandler) Update(c echo.Context) error {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Tarea inválida"})
	}

	var req updateTareaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}

	ctx := c.Request().Context()
	record, err := h.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Tarea no encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	if req.Titulo != nil {
		record.Title = *req.Titulo
	}
	if req.Descripcion != nil {
		record.Description = *req.Descripcion
	}
	if req.AreaID != nil {
		record.AreaID = req.AreaID
	}
	if req.FechaVencimiento != nil {
		if _, err := time.ParseInLocation(wireTimeLayout, *req.FechaVencimiento, time.Local); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Fecha inválida"})
		}
		record.DueDate = *req.FechaVencimiento
	}
	if req.Evidencia != nil {
		record.Evidence = req.Evidencia
	}

	if err := h.tasks.Update(ctx, record); err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Tarea no encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"mensaje": "Tarea actualizada",
		"tarea":   tareaJSON(*record),
	})
}

// UpdateStatus handles PUT /tareas/:id/estado. Moving to completada
// stamps the completion time; moving back to pendiente clears it.
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Tarea inválida"})
	}

	var req estadoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Estado inválido"})
	}

	var completedAt *string
	if req.Estado == "completada" {
		stamp := time.Now().Format(wireTimeLayout)
		completedAt = &stamp
	}

	err = h.tasks.UpdateStatus(c.Request().Context(), taskID, req.Estado, completedAt)
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Tarea no encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	return c.JSON(http.StatusOK, map[string]string{"mensaje": "Estado actualizado"})
}

// Delete handles DELETE /tareas/:id. Deleting a task that is already
// gone answers 404 so clients can treat the removal as idempotent.
func (h *TaskHandler) Delete(c echo.Context) error {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Tarea inválida"})
	}

	var req deleteTareaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}

	deleted, err := h.tasks.Delete(c.Request().Context(), taskID, req.UsuarioID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Tarea no encontrada"})
	}

	h.logger.Infow("Task deleted", "task_id", taskID, "user_id", req.UsuarioID)
	return c.JSON(http.StatusOK, map[string]string{"mensaje": "Tarea eliminada"})
}

func tareaJSON(r ports.TaskRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":                r.ID,
		"usuario_id":        r.UserID,
		"titulo":            r.Title,
		"descripcion":       r.Description,
		"area_id":           r.AreaID,
		"grupo_id":          r.GroupID,
		"fecha_vencimiento": r.DueDate,
		"estado":            r.Status,
		"completada_en":     r.CompletedAt,
		"evidencia":         r.Evidence,
	}
}

// AuthHandler serves account registration and login.
type AuthHandler struct {
	users  ports.DevUserRepository
	areas  ports.DevAreaRepository
	config config.DevServerConfig
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users ports.DevUserRepository, areas ports.DevAreaRepository, cfg config.DevServerConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, areas: areas, config: cfg, logger: log}
}

type registroRequest struct {
	Nombre     string `json:"nombre" validate:"required,min=2"`
	Apellido   string `json:"apellido"`
	Email      string `json:"email" validate:"required,email"`
	Contrasena string `json:"contrasena" validate:"required,min=8"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Contrasena string `json:"contrasena" validate:"required"`
}

// Register handles POST /usuarios. A fresh account gets the default
// area set seeded so the dashboard is not empty on first login.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registroRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}

	ctx := c.Request().Context()

	if _, err := h.users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "El email ya está registrado"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Contrasena), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	user := ports.UserRecord{
		Name:         req.Nombre,
		LastName:     req.Apellido,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.users.Create(ctx, &user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	h.seedAreas(c, user.ID)

	h.logger.Infow("User registered", "user_id", user.ID, "email", user.Email)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"mensaje":    "Usuario creado",
		"usuario_id": user.ID,
		"nombre":     user.Name,
		"email":      user.Email,
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Datos inválidos"})
	}

	ctx := c.Request().Context()

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Credenciales incorrectas"})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Contrasena)) != nil {
		h.logger.Warnw("Login attempt with invalid password", "email", req.Email)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Credenciales incorrectas"})
	}

	token, err := h.issueToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	h.logger.Infow("User logged in", "user_id", user.ID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"usuario_id": user.ID,
		"nombre":     user.Name,
		"email":      user.Email,
		"token":      token,
	})
}

func (h *AuthHandler) issueToken(user *ports.UserRecord) (string, error) {
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"iat":   jwt.NewNumericDate(time.Now()),
		"exp":   jwt.NewNumericDate(time.Now().Add(h.config.JWTExpiresIn)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}

func (h *AuthHandler) seedAreas(c echo.Context, userID int64) {
	seeds := []ports.AreaRecord{
		{UserID: userID, Name: "Trabajo", Color: "#93c5fd", Icon: "briefcase", Category: "trabajo"},
		{UserID: userID, Name: "Personal", Color: "#86efac", Icon: "home", Category: "personal"},
		{UserID: userID, Name: "Escuela", Color: "#bae6fd", Icon: "book", Category: "escuela"},
	}
	for i := range seeds {
		if err := h.areas.Create(c.Request().Context(), &seeds[i]); err != nil {
			h.logger.WithError(err).Warnw("Seeding default area failed", "user_id", userID)
		}
	}
}

// CatalogHandler serves the read-side areas and grupos endpoints.
type CatalogHandler struct {
	areas  ports.DevAreaRepository
	groups ports.DevGroupRepository
	logger *logger.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(areas ports.DevAreaRepository, groups ports.DevGroupRepository, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{areas: areas, groups: groups, logger: log}
}

// ListAreas handles GET /areas/:userId.
func (h *CatalogHandler) ListAreas(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Usuario inválido"})
	}

	records, err := h.areas.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	out := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		out = append(out, map[string]interface{}{
			"id":          r.ID,
			"usuario_id":  r.UserID,
			"nombre":      r.Name,
			"descripcion": r.Description,
			"color":       r.Color,
			"icono":       r.Icon,
			"categoria":   r.Category,
			"estado":      r.State,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ListGroups handles GET /grupos/:userId.
func (h *CatalogHandler) ListGroups(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Usuario inválido"})
	}

	records, err := h.groups.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error interno")
	}

	out := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		out = append(out, map[string]interface{}{
			"id":         r.ID,
			"usuario_id": r.UserID,
			"nombre":     r.Name,
			"color":      r.Color,
			"icono":      r.Icon,
			"estado":     r.State,
		})
	}
	return c.JSON(http.StatusOK, out)
}
