package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astren/core/internal/adapters/repository"
	"github.com/astren/core/internal/infrastructure/config"
	"github.com/astren/core/internal/infrastructure/database"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

type testValidator struct{ v *validator.Validate }

func (tv *testValidator) Validate(i interface{}) error { return tv.v.Struct(i) }

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	cfg := config.DevServerConfig{DatabasePath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	return e
}

func seedUser(t *testing.T, db *database.DB) int64 {
	t.Helper()
	users := repository.NewUserRepository(db.DB)
	user := ports.UserRecord{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), &user))
	return user.ID
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string, handler echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	require.NoError(t, handler(c))
	return rec
}

func TestCreateTaskAndDuplicate(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	e := newEcho()
	h := NewTaskHandler(repository.NewTaskRepository(db.DB), logger.NewNop())

	body := `{"usuario_id": ` + itoa(userID) + `, "titulo": "Preparar informe", "fecha_vencimiento": "2026-09-01 18:00"}`

	rec := doJSON(t, e, http.MethodPost, "/tareas", body, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Mensaje string `json:"mensaje"`
		Tarea   struct {
			ID     int64  `json:"id"`
			Estado string `json:"estado"`
		} `json:"tarea"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Tarea creada", created.Mensaje)
	assert.Equal(t, "pendiente", created.Tarea.Estado)

	// Same title and due date: no second row.
	rec = doJSON(t, e, http.MethodPost, "/tareas", body, h.Create)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tarea no creada")
}

func TestCreateTaskRejectsBadDate(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	e := newEcho()
	h := NewTaskHandler(repository.NewTaskRepository(db.DB), logger.NewNop())

	body := `{"usuario_id": ` + itoa(userID) + `, "titulo": "Preparar informe", "fecha_vencimiento": "mañana"}`
	rec := doJSON(t, e, http.MethodPost, "/tareas", body, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusStampsCompletion(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	e := newEcho()

	tasks := repository.NewTaskRepository(db.DB)
	record := ports.TaskRecord{UserID: userID, Title: "Entrega", DueDate: "2026-09-01 18:00"}
	require.NoError(t, tasks.Create(context.Background(), &record))

	h := NewTaskHandler(tasks, logger.NewNop())

	rec := doJSON(t, e, http.MethodPut, "/tareas/1/estado", `{"estado": "completada"}`, h.UpdateStatus, "id", itoa(record.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := tasks.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "completada", stored.Status)
	require.NotNil(t, stored.CompletedAt)
	_, err = time.ParseInLocation("2006-01-02 15:04", *stored.CompletedAt, time.Local)
	assert.NoError(t, err)

	// Back to pendiente clears the stamp.
	rec = doJSON(t, e, http.MethodPut, "/tareas/1/estado", `{"estado": "pendiente"}`, h.UpdateStatus, "id", itoa(record.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err = tasks.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompletedAt)
}

func TestUpdateStatusRejectsUnknownEstado(t *testing.T) {
	db := newTestDB(t)
	e := newEcho()
	h := NewTaskHandler(repository.NewTaskRepository(db.DB), logger.NewNop())

	rec := doJSON(t, e, http.MethodPut, "/tareas/1/estado", `{"estado": "hecha"}`, h.UpdateStatus, "id", "1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTaskTwiceAnswers404(t *testing.T) {
	db := newTestDB(t)
	userID := seedUser(t, db)
	e := newEcho()

	tasks := repository.NewTaskRepository(db.DB)
	record := ports.TaskRecord{UserID: userID, Title: "Borrar", DueDate: "2026-09-01 18:00"}
	require.NoError(t, tasks.Create(context.Background(), &record))

	h := NewTaskHandler(tasks, logger.NewNop())
	body := `{"usuario_id": ` + itoa(userID) + `}`

	rec := doJSON(t, e, http.MethodDelete, "/tareas/1", body, h.Delete, "id", itoa(record.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/tareas/1", body, h.Delete, "id", itoa(record.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	db := newTestDB(t)
	e := newEcho()

	users := repository.NewUserRepository(db.DB)
	areas := repository.NewAreaRepository(db.DB)
	cfg := config.DevServerConfig{JWTSecret: "test-secret", JWTExpiresIn: time.Hour}
	h := NewAuthHandler(users, areas, cfg, logger.NewNop())

	register := `{"nombre": "Ana", "apellido": "García", "email": "ana@example.com", "contrasena": "secreto123"}`
	rec := doJSON(t, e, http.MethodPost, "/usuarios", register, h.Register)
	require.Equal(t, http.StatusCreated, rec.Code)

	var reg struct {
		UsuarioID int64 `json:"usuario_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	require.NotZero(t, reg.UsuarioID)

	// Registration seeds the default areas.
	seeded, err := areas.ListByUser(context.Background(), reg.UsuarioID)
	require.NoError(t, err)
	assert.Len(t, seeded, 3)

	// Duplicate email is rejected.
	rec = doJSON(t, e, http.MethodPost, "/usuarios", register, h.Register)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Good credentials answer a token.
	rec = doJSON(t, e, http.MethodPost, "/login", `{"email": "ana@example.com", "contrasena": "secreto123"}`, h.Login)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		UsuarioID int64  `json:"usuario_id"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, reg.UsuarioID, login.UsuarioID)
	assert.NotEmpty(t, login.Token)

	// Bad credentials do not.
	rec = doJSON(t, e, http.MethodPost, "/login", `{"email": "ana@example.com", "contrasena": "incorrecta"}`, h.Login)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
