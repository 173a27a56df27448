package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/config"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.BackendConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		RateLimit:      100,
		RateBurst:      10,
	}
	return NewClient(cfg, logger.NewNop())
}

func TestListTasksMapsWireStatuses(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tareas/7", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "usuario_id": 7, "titulo": "Informe", "estado": "pendiente", "fecha_vencimiento": "2026-09-01 18:00"},
			{"id": 2, "usuario_id": 7, "titulo": "Entrega", "estado": "completada", "fecha_vencimiento": "2026-08-20 09:00", "completada_en": "2026-08-19 14:30"},
			{"id": 3, "usuario_id": 7, "titulo": "Examen", "estado": "vencida", "fecha_vencimiento": "2026-08-01 08:00"}
		]`))
	}))

	tasks, err := client.ListTasks(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, entities.TaskStatusPending, tasks[0].Status)
	assert.Equal(t, entities.TaskStatusCompleted, tasks[1].Status)
	assert.Equal(t, entities.TaskStatusOverdue, tasks[2].Status)

	assert.Equal(t, "Informe", tasks[0].Title)
	assert.Equal(t, time.Date(2026, 9, 1, 18, 0, 0, 0, time.Local), tasks[0].DueDate)
	require.NotNil(t, tasks[1].CompletedAt)
	assert.Equal(t, time.Date(2026, 8, 19, 14, 30, 0, 0, time.Local), *tasks[1].CompletedAt)
}

func TestCreateTaskSendsWireFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tareas", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Preparar informe", body["titulo"])
		assert.Equal(t, float64(7), body["usuario_id"])
		assert.Equal(t, "2026-09-01 18:00", body["fecha_vencimiento"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mensaje": "Tarea creada", "tarea": {"id": 42, "usuario_id": 7, "titulo": "Preparar informe", "estado": "pendiente", "fecha_vencimiento": "2026-09-01 18:00"}}`))
	}))

	result, err := client.CreateTask(context.Background(), ports.CreateTaskRequest{
		UserID:  7,
		Title:   "Preparar informe",
		DueDate: time.Date(2026, 9, 1, 18, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	require.NotNil(t, result.Task)
	assert.Equal(t, int64(42), result.Task.ID)
	assert.Equal(t, entities.TaskStatusPending, result.Task.Status)
}

func TestCreateTaskRecognizesDuplicate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mensaje": "Tarea no creada"}`))
	}))

	result, err := client.CreateTask(context.Background(), ports.CreateTaskRequest{
		UserID:  7,
		Title:   "Preparar informe",
		DueDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Nil(t, result.Task)
}

func TestDeleteTaskNotFoundIsSentinel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)

		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(7), body["usuario_id"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "Tarea no encontrada"}`))
	}))

	err := client.DeleteTask(context.Background(), 99, 7)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestUpdateTaskStatusSpeaksEstado(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tareas/5/estado", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "completada", body["estado"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mensaje": "Estado actualizado"}`))
	}))

	err := client.UpdateTaskStatus(context.Background(), 5, entities.TaskStatusCompleted)
	require.NoError(t, err)
}

func TestLoginInvalidCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Credenciales incorrectas"}`))
	}))

	_, err := client.Login(context.Background(), ports.LoginRequest{
		Email:    "ana@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
}

func TestListAreasMapsCategoryAndArchived(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "usuario_id": 7, "nombre": "Trabajo", "categoria": "trabajo", "estado": "activa"},
			{"id": 2, "usuario_id": 7, "nombre": "Viejo", "categoria": "personal", "estado": "archivada"}
		]`))
	}))

	areas, err := client.ListAreas(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, areas, 2)

	assert.Equal(t, entities.AreaCategoryWork, areas[0].Category)
	assert.False(t, areas[0].Archived)
	assert.True(t, areas[1].Archived)
}
