package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// TaskService is the interface that wraps methods for task management
type TaskService interface {
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	CountTasks(ctx context.Context) (int, error)
	UpdateTask(ctx context.Context, id int, req models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// TaskHandler handles professor task requests
type TaskHandler struct {
	BaseHandler
	taskService TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: BaseHandler{Logger: logger},
		taskService: taskService,
	}
}

// RegisterRoutes registers all task handler routes
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Get("/", h.ListTasks)
		r.Get("/count", h.CountTasks)
		r.Put("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})
}

// CreateTask handles POST /tasks
// @Summary Assign a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateTaskRequest true "Task data"
// @Success 201 {object} models.Task "Created task"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, task)
}

// ListTasks handles GET /tasks
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Task "Tasks"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, tasks)
}

// CountTasks handles GET /tasks/count
// @Summary Count tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int "Number of tasks"
// @Router /tasks/count [get]
func (h *TaskHandler) CountTasks(w http.ResponseWriter, r *http.Request) {
	count, err := h.taskService.CountTasks(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]int{"total_tasks": count})
}

// UpdateTask handles PUT /tasks/{id}
// @Summary Edit a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body models.UpdateTaskRequest true "New data"
// @Success 200 {object} models.Task "Updated task"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Task not found"
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}
// @Summary Delete a task and its grades
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} map[string]string "Task deleted"
// @Failure 404 {object} map[string]string "Task not found"
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}
