package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

type gradeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewGradeRepository creates a new grade repository
func NewGradeRepository(db *sql.DB, logger *zap.Logger) *gradeRepository {
	return &gradeRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a grade and sets its ID.
// A task or student that does not exist returns models.ErrNotFound.
func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	query := `
		INSERT INTO grades (task_id, student_id, score, graded_at)
		VALUES (?, ?, ?, ?)
	`

	var score sql.NullFloat64
	if grade.Score != nil {
		score = sql.NullFloat64{Float64: *grade.Score, Valid: true}
	}

	var gradedAt sql.NullTime
	if grade.GradedAt != nil {
		gradedAt = sql.NullTime{Time: *grade.GradedAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query, grade.TaskID, grade.StudentID, score, gradedAt)
	if err != nil {
		if isMySQLError(err, mysqlErrNoReferencedRow) {
			return fmt.Errorf("task or student does not exist: %w", models.ErrNotFound)
		}
		r.logger.Error("failed to create grade", zap.Error(err))
		return storeError("failed to create grade", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return storeError("failed to get last insert id", err)
	}

	grade.ID = int(id)
	return nil
}

// CountPending returns the number of grades without a score
func (r *gradeRepository) CountPending(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM grades WHERE score IS NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		r.logger.Error("failed to count pending grades", zap.Error(err))
		return 0, storeError("failed to count pending grades", err)
	}

	return count, nil
}

// ListByStudent returns the grades of a student joined with task title and weight
func (r *gradeRepository) ListByStudent(ctx context.Context, studentID int) ([]models.StudentGrade, error) {
	query := `
		SELECT t.id, t.title, t.weight, g.score, g.graded_at
		FROM grades g
		JOIN tasks t ON t.id = g.task_id
		WHERE g.student_id = ?
		ORDER BY t.due_date, t.id
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		r.logger.Error("failed to query grades", zap.Error(err), zap.Int("student_id", studentID))
		return nil, storeError("failed to query grades", err)
	}
	defer rows.Close()

	grades := []models.StudentGrade{}
	for rows.Next() {
		var g models.StudentGrade
		var score sql.NullFloat64
		var gradedAt sql.NullTime
		if err := rows.Scan(&g.TaskID, &g.Task, &g.Weight, &score, &gradedAt); err != nil {
			r.logger.Error("failed to scan grade", zap.Error(err))
			return nil, storeError("failed to scan grade", err)
		}
		if score.Valid {
			s := score.Float64
			g.Score = &s
		}
		if gradedAt.Valid {
			t := gradedAt.Time
			g.GradedAt = &t
		}
		grades = append(grades, g)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, storeError("error iterating rows", err)
	}

	return grades, nil
}
