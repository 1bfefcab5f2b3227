package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// TaskRepository is the interface that wraps methods for Task table data access
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int) (*models.Task, error)
	List(ctx context.Context) ([]models.Task, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int) error
}

type taskService struct {
	repo   TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(repo TaskRepository, logger *zap.Logger) *taskService {
	return &taskService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// CreateTask assigns a new task.
// The assignment date defaults to today, status to pendiente and difficulty to media.
func (s *taskService) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return nil, models.NewValidationError(err)
	}

	assigned := today(s.now())
	if req.AssignedDate != "" {
		assigned, _ = time.Parse(models.DateLayout, req.AssignedDate)
	}
	due, _ := time.Parse(models.DateLayout, req.DueDate)
	if due.Before(assigned) {
		return nil, fmt.Errorf("%w: due_date: must not be before assigned_date", models.ErrValidation)
	}

	task := &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		AssignedDate: assigned,
		DueDate:      due,
		Weight:       req.Weight,
		MaxPoints:    req.MaxPoints,
		Status:       req.Status,
		Resources:    req.Resources,
		Difficulty:   req.Difficulty,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Difficulty == "" {
		task.Difficulty = models.DifficultyMedium
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created", zap.Int("task_id", task.ID))
	return task, nil
}

// ListTasks returns all tasks
func (s *taskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CountTasks returns the number of tasks
func (s *taskService) CountTasks(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// UpdateTask edits title, description, due date, weight, resources and difficulty
func (s *taskService) UpdateTask(ctx context.Context, id int, req models.UpdateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return nil, models.NewValidationError(err)
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	due, _ := time.Parse(models.DateLayout, req.DueDate)
	if due.Before(task.AssignedDate) {
		return nil, fmt.Errorf("%w: due_date: must not be before assigned_date", models.ErrValidation)
	}

	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = due
	task.Weight = req.Weight
	task.Resources = req.Resources
	if req.Difficulty != "" {
		task.Difficulty = req.Difficulty
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task and, through the store, its grades
func (s *taskService) DeleteTask(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info("task deleted", zap.Int("task_id", id))
	return nil
}

func today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
