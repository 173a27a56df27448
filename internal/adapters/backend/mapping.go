package backend

import (
	"time"

	"github.com/astren/core/internal/domain/entities"
)

// Wire shapes of the backend API. Field names are the backend's Spanish
// ones; the mapping in this file is the only place where they exist.
// Everything past this boundary speaks the canonical entity types.

// WireTimeLayout is the due-date format on the wire: wall-clock local
// time, no timezone.
const WireTimeLayout = "2006-01-02 15:04"

type tareaWire struct {
	ID               int64   `json:"id"`
	UsuarioID        int64   `json:"usuario_id"`
	Titulo           string  `json:"titulo"`
	Descripcion      string  `json:"descripcion"`
	AreaID           *int64  `json:"area_id"`
	GrupoID          *int64  `json:"grupo_id"`
	FechaVencimiento string  `json:"fecha_vencimiento"`
	Estado           string  `json:"estado"`
	CompletadaEn     *string `json:"completada_en,omitempty"`
	Evidencia        *string `json:"evidencia,omitempty"`
}

type crearTareaWire struct {
	UsuarioID        int64  `json:"usuario_id"`
	Titulo           string `json:"titulo"`
	Descripcion      string `json:"descripcion"`
	AreaID           *int64 `json:"area_id"`
	GrupoID          *int64 `json:"grupo_id"`
	FechaVencimiento string `json:"fecha_vencimiento"`
}

type actualizarTareaWire struct {
	Titulo           *string `json:"titulo,omitempty"`
	Descripcion      *string `json:"descripcion,omitempty"`
	AreaID           *int64  `json:"area_id,omitempty"`
	FechaVencimiento *string `json:"fecha_vencimiento,omitempty"`
}

type areaWire struct {
	ID          int64  `json:"id"`
	UsuarioID   int64  `json:"usuario_id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Color       string `json:"color"`
	Icono       string `json:"icono"`
	Categoria   string `json:"categoria"`
	Estado      string `json:"estado"`
}

type grupoWire struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Color  string `json:"color"`
	Icono  string `json:"icono"`
	Estado string `json:"estado"`
}

type mensajeWire struct {
	Mensaje string     `json:"mensaje"`
	Error   string     `json:"error"`
	Tarea   *tareaWire `json:"tarea"`
}

type registroWire struct {
	Nombre     string `json:"nombre"`
	Apellido   string `json:"apellido"`
	Email      string `json:"email"`
	Contrasena string `json:"contrasena"`
}

type loginWire struct {
	Email      string `json:"email"`
	Contrasena string `json:"contrasena"`
}

type sesionWire struct {
	UsuarioID int64  `json:"usuario_id"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	Error     string `json:"error"`
}

// statusFromWire maps the backend estado enum to the canonical status.
// Unknown values degrade to pending rather than failing the whole list.
func statusFromWire(estado string) entities.TaskStatus {
	switch estado {
	case "pendiente":
		return entities.TaskStatusPending
	case "completada":
		return entities.TaskStatusCompleted
	case "vencida":
		return entities.TaskStatusOverdue
	default:
		return entities.TaskStatusPending
	}
}

// statusToWire is the inverse mapping for status updates.
func statusToWire(status entities.TaskStatus) string {
	switch status {
	case entities.TaskStatusCompleted:
		return "completada"
	case entities.TaskStatusOverdue:
		return "vencida"
	default:
		return "pendiente"
	}
}

func categoryFromWire(categoria string) entities.AreaCategory {
	switch categoria {
	case "trabajo", "work":
		return entities.AreaCategoryWork
	case "escuela", "school":
		return entities.AreaCategorySchool
	case "personal":
		return entities.AreaCategoryPersonal
	default:
		return entities.AreaCategoryGeneral
	}
}

// parseWireTime accepts the backend's wall-clock format and, as a
// fallback, RFC3339 which some endpoints historically emitted.
func parseWireTime(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(WireTimeLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func formatWireTime(t time.Time) string {
	return t.Format(WireTimeLayout)
}

func taskFromWire(w tareaWire) entities.Task {
	task := entities.Task{
		ID:          w.ID,
		UserID:      w.UsuarioID,
		Title:       w.Titulo,
		Description: w.Descripcion,
		AreaID:      w.AreaID,
		GroupID:     w.GrupoID,
		Status:      statusFromWire(w.Estado),
		Evidence:    w.Evidencia,
	}

	if due, err := parseWireTime(w.FechaVencimiento); err == nil {
		task.DueDate = due
	}
	if w.CompletadaEn != nil {
		if completed, err := parseWireTime(*w.CompletadaEn); err == nil {
			task.CompletedAt = &completed
		}
	}
	return task
}

func areaFromWire(w areaWire) entities.Area {
	return entities.Area{
		ID:          w.ID,
		UserID:      w.UsuarioID,
		Name:        w.Nombre,
		Description: w.Descripcion,
		Color:       w.Color,
		Icon:        w.Icono,
		Category:    categoryFromWire(w.Categoria),
		Archived:    w.Estado != "activa",
	}
}

func groupFromWire(w grupoWire) entities.Group {
	return entities.Group{
		ID:     w.ID,
		Name:   w.Nombre,
		Color:  w.Color,
		Icon:   w.Icono,
		Active: w.Estado == "activa",
	}
}
