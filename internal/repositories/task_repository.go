package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

type taskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB, logger *zap.Logger) *taskRepository {
	return &taskRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new task and sets its ID
func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, assigned_date, due_date, weight, max_points, status, resources, difficulty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.AssignedDate,
		task.DueDate,
		task.Weight,
		task.MaxPoints,
		task.Status,
		task.Resources,
		task.Difficulty,
	)
	if err != nil {
		r.logger.Error("failed to create task", zap.Error(err))
		return storeError("failed to create task", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return storeError("failed to get last insert id", err)
	}

	task.ID = int(id)
	return nil
}

// GetByID retrieves a task by ID
func (r *taskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	query := `
		SELECT id, title, description, assigned_date, due_date, weight, max_points, status, resources, difficulty
		FROM tasks
		WHERE id = ?
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get task", zap.Error(err), zap.Int("task_id", id))
		return nil, storeError("failed to get task", err)
	}

	return task, nil
}

// List returns all tasks, most recent due date first
func (r *taskRepository) List(ctx context.Context) ([]models.Task, error) {
	query := `
		SELECT id, title, description, assigned_date, due_date, weight, max_points, status, resources, difficulty
		FROM tasks
		ORDER BY due_date DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query tasks", zap.Error(err))
		return nil, storeError("failed to query tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			r.logger.Error("failed to scan task", zap.Error(err))
			return nil, storeError("failed to scan task", err)
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, storeError("error iterating rows", err)
	}

	return tasks, nil
}

// Count returns the number of tasks
func (r *taskRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM tasks`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		r.logger.Error("failed to count tasks", zap.Error(err))
		return 0, storeError("failed to count tasks", err)
	}

	return count, nil
}

// Update edits the editable fields of a task
func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, weight = ?, resources = ?, difficulty = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.DueDate,
		task.Weight,
		task.Resources,
		task.Difficulty,
		task.ID,
	)
	if err != nil {
		r.logger.Error("failed to update task", zap.Error(err), zap.Int("task_id", task.ID))
		return storeError("failed to update task", err)
	}

	return expectAffected(result, r.logger, "failed to update task")
}

// Delete removes a task; its grades are removed by the foreign key cascade
func (r *taskRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tasks WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("failed to delete task", zap.Error(err), zap.Int("task_id", id))
		return storeError("failed to delete task", err)
	}

	return expectAffected(result, r.logger, "failed to delete task")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var description, resources sql.NullString
	var difficulty sql.NullString
	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.AssignedDate,
		&task.DueDate,
		&task.Weight,
		&task.MaxPoints,
		&task.Status,
		&resources,
		&difficulty,
	)
	if err != nil {
		return nil, err
	}
	task.Description = description.String
	task.Resources = resources.String
	task.Difficulty = models.Difficulty(difficulty.String)
	return task, nil
}
