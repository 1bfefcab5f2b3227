package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// DateLayout is the wire format of task dates
const DateLayout = "2006-01-02"

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pendiente"
	TaskStatusActive  TaskStatus = "activa"
	TaskStatusClosed  TaskStatus = "cerrada"
)

// Difficulty represents the difficulty level of a task
type Difficulty string

const (
	DifficultyLow    Difficulty = "baja"
	DifficultyMedium Difficulty = "media"
	DifficultyHigh   Difficulty = "alta"
)

// Task represents an assignment created by a professor
type Task struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AssignedDate time.Time  `json:"assigned_date"`
	DueDate      time.Time  `json:"due_date"`
	Weight       float64    `json:"weight"` // percentage of the final average
	MaxPoints    int        `json:"max_points"`
	Status       TaskStatus `json:"status"`
	Resources    string     `json:"resources"`
	Difficulty   Difficulty `json:"difficulty"`
}

// CreateTaskRequest represents a request to assign a task
type CreateTaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AssignedDate string     `json:"assigned_date"`
	DueDate      string     `json:"due_date"`
	Weight       float64    `json:"weight"`
	MaxPoints    int        `json:"max_points"`
	Status       TaskStatus `json:"status"`
	Resources    string     `json:"resources"`
	Difficulty   Difficulty `json:"difficulty"`
}

// Validate checks the task payload
func (r CreateTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.AssignedDate, validation.Date(DateLayout)),
		validation.Field(&r.DueDate, validation.Required, validation.Date(DateLayout)),
		validation.Field(&r.Weight, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&r.MaxPoints, validation.Min(0)),
		validation.Field(&r.Status, validation.In(TaskStatusPending, TaskStatusActive, TaskStatusClosed)),
		validation.Field(&r.Resources, validation.Length(0, 1000)),
		validation.Field(&r.Difficulty, validation.In(DifficultyLow, DifficultyMedium, DifficultyHigh)),
	)
}

// UpdateTaskRequest represents an edit of a task. The assignment date and status are not editable.
type UpdateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	Weight      float64    `json:"weight"`
	Resources   string     `json:"resources"`
	Difficulty  Difficulty `json:"difficulty"`
}

// Validate checks the task edit payload
func (r UpdateTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.DueDate, validation.Required, validation.Date(DateLayout)),
		validation.Field(&r.Weight, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&r.Resources, validation.Length(0, 1000)),
		validation.Field(&r.Difficulty, validation.In(DifficultyLow, DifficultyMedium, DifficultyHigh)),
	)
}
