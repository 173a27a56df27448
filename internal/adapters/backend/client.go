package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/config"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/ports"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "astren_backend_requests_total",
		Help: "Requests issued to the task backend by method and status code.",
	},
	[]string{"method", "status"},
)

// Client is the HTTP implementation of ports.BackendGateway. All requests
// pass through a shared rate limiter so a burst of UI actions cannot
// stampede the backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

var _ ports.BackendGateway = (*Client)(nil)

// NewClient builds a gateway against the configured backend base URL.
func NewClient(cfg *config.BackendConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  log.WithComponent("backend"),
	}
}

// CreateTask posts a new task. The backend answers with either the created
// task or a message explaining why nothing was created; a duplicate answer
// is reported as such instead of failing.
func (c *Client) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*ports.CreateTaskResult, error) {
	body := crearTareaWire{
		UsuarioID:        req.UserID,
		Titulo:           req.Title,
		Descripcion:      req.Description,
		AreaID:           req.AreaID,
		GrupoID:          req.GroupID,
		FechaVencimiento: formatWireTime(req.DueDate),
	}

	var resp mensajeWire
	status, err := c.doJSON(ctx, http.MethodPost, "/tareas", body, &resp)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusConflict || strings.Contains(resp.Mensaje, "no creada"):
		return &ports.CreateTaskResult{Duplicate: true}, nil
	case status >= 400:
		return nil, c.remoteError(status, resp.Error)
	}

	result := &ports.CreateTaskResult{}
	if resp.Tarea != nil {
		task := taskFromWire(*resp.Tarea)
		result.Task = &task
	}
	return result, nil
}

// ListTasks fetches the user's full task collection.
func (c *Client) ListTasks(ctx context.Context, userID int64) ([]entities.Task, error) {
	var wire []tareaWire
	status, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/tareas/%d", userID), nil, &wire)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.remoteError(status, "")
	}

	tasks := make([]entities.Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, taskFromWire(w))
	}
	return tasks, nil
}

// UpdateTask merges the set fields of req into the task on the backend.
func (c *Client) UpdateTask(ctx context.Context, taskID int64, req ports.UpdateTaskRequest) error {
	body := actualizarTareaWire{
		Titulo:      req.Title,
		Descripcion: req.Description,
		AreaID:      req.AreaID,
	}
	if req.DueDate != nil {
		due := formatWireTime(*req.DueDate)
		body.FechaVencimiento = &due
	}

	var resp mensajeWire
	status, err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/tareas/%d", taskID), body, &resp)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return entities.ErrTaskNotFound
	}
	if status >= 400 {
		return c.remoteError(status, resp.Error)
	}
	return nil
}

// UpdateTaskStatus flips the task's status through the dedicated estado
// endpoint.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID int64, taskStatus entities.TaskStatus) error {
	body := map[string]string{"estado": statusToWire(taskStatus)}

	var resp mensajeWire
	status, err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/tareas/%d/estado", taskID), body, &resp)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return entities.ErrTaskNotFound
	}
	if status >= 400 {
		return c.remoteError(status, resp.Error)
	}
	return nil
}

// DeleteTask removes a task. A 404 answer means the task was already gone
// and surfaces as entities.ErrTaskNotFound, which callers treat as success.
func (c *Client) DeleteTask(ctx context.Context, taskID, userID int64) error {
	body := map[string]int64{"usuario_id": userID}

	var resp mensajeWire
	status, err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/tareas/%d", taskID), body, &resp)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return entities.ErrTaskNotFound
	}
	if status >= 400 {
		return c.remoteError(status, resp.Error)
	}
	return nil
}

// ListAreas fetches the user's areas.
func (c *Client) ListAreas(ctx context.Context, userID int64) ([]entities.Area, error) {
	var wire []areaWire
	status, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/areas/%d", userID), nil, &wire)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.remoteError(status, "")
	}

	areas := make([]entities.Area, 0, len(wire))
	for _, w := range wire {
		areas = append(areas, areaFromWire(w))
	}
	return areas, nil
}

// ListGroups fetches the user's groups.
func (c *Client) ListGroups(ctx context.Context, userID int64) ([]entities.Group, error) {
	var wire []grupoWire
	status, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/grupos/%d", userID), nil, &wire)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.remoteError(status, "")
	}

	groups := make([]entities.Group, 0, len(wire))
	for _, w := range wire {
		groups = append(groups, groupFromWire(w))
	}
	return groups, nil
}

// Register creates a new user and returns its id.
func (c *Client) Register(ctx context.Context, req ports.RegisterRequest) (int64, error) {
	body := registroWire{
		Nombre:     req.Name,
		Apellido:   req.LastName,
		Email:      req.Email,
		Contrasena: req.Password,
	}

	var resp sesionWire
	status, err := c.doJSON(ctx, http.MethodPost, "/usuarios", body, &resp)
	if err != nil {
		return 0, err
	}
	if status >= 400 {
		return 0, c.remoteError(status, resp.Error)
	}
	return resp.UsuarioID, nil
}

// Login authenticates and returns the session identity.
func (c *Client) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResult, error) {
	body := loginWire{Email: req.Email, Contrasena: req.Password}

	var resp sesionWire
	status, err := c.doJSON(ctx, http.MethodPost, "/login", body, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, entities.ErrInvalidCredentials
	}
	if status >= 400 {
		return nil, c.remoteError(status, resp.Error)
	}

	return &ports.LoginResult{
		UserID: resp.UsuarioID,
		Name:   resp.Nombre,
		Email:  resp.Email,
		Token:  resp.Token,
	}, nil
}

// doJSON sends one JSON request and decodes the JSON answer into out. The
// HTTP status is always returned so callers can map error codes; a decode
// failure on an error status is ignored since the status already tells the
// story.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("backend request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.LogHTTPRequest(method, path, resp.StatusCode, float64(time.Since(start).Milliseconds()))
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.StatusCode < 400 {
			return resp.StatusCode, fmt.Errorf("decoding response %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) remoteError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("backend returned %d: %s", status, message)
}
