package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// GradeRepository is the interface that wraps methods for Grade table data access
type GradeRepository interface {
	// Method Create inserts a grade. A missing task or student yields models.ErrNotFound.
	Create(ctx context.Context, grade *models.Grade) error
	// Method CountPending returns the number of grades without a score.
	CountPending(ctx context.Context) (int, error)
	// Method ListByStudent returns a student's grades with task title and weight.
	ListByStudent(ctx context.Context, studentID int) ([]models.StudentGrade, error)
}

// StudentLookup resolves a user by ID
type StudentLookup interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type gradeService struct {
	repo     GradeRepository
	students StudentLookup
	logger   *zap.Logger
	now      func() time.Time
}

// NewGradeService creates a new grade service
func NewGradeService(repo GradeRepository, students StudentLookup, logger *zap.Logger) *gradeService {
	return &gradeService{
		repo:     repo,
		students: students,
		logger:   logger,
		now:      time.Now,
	}
}

// AddGrade records a grade for a student's task. A nil score records a pending grade.
func (s *gradeService) AddGrade(ctx context.Context, req models.AddGradeRequest) (*models.Grade, error) {
	if err := req.Validate(); err != nil {
		return nil, models.NewValidationError(err)
	}

	if err := s.ensureStudent(ctx, req.StudentID); err != nil {
		return nil, err
	}

	grade := &models.Grade{
		TaskID:    req.TaskID,
		StudentID: req.StudentID,
		Score:     req.Score,
	}
	if req.Score != nil {
		gradedAt := today(s.now())
		grade.GradedAt = &gradedAt
	}

	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to add grade: %w", err)
	}

	s.logger.Info("grade added",
		zap.Int("grade_id", grade.ID),
		zap.Int("task_id", grade.TaskID),
		zap.Int("student_id", grade.StudentID),
		zap.Bool("pending", grade.Score == nil),
	)
	return grade, nil
}

// CountPending returns the number of grades still waiting for a score
func (s *gradeService) CountPending(ctx context.Context) (int, error) {
	count, err := s.repo.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending grades: %w", err)
	}
	return count, nil
}

// StudentReport returns a student's grades and the weighted final average
func (s *gradeService) StudentReport(ctx context.Context, studentID int) (*models.StudentGradesReport, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}

	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	return &models.StudentGradesReport{
		StudentID:    studentID,
		Grades:       grades,
		FinalAverage: WeightedAverage(grades),
	}, nil
}

func (s *gradeService) ensureStudent(ctx context.Context, id int) error {
	user, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("student %d: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("failed to get student: %w", err)
	}
	if user.Role != models.RoleStudent {
		return fmt.Errorf("user %d is not a student: %w", id, models.ErrNotFound)
	}
	return nil
}

// WeightedAverage sums score * weight / 100 over graded rows, rounded to two decimals.
// It returns nil when no row has a score.
func WeightedAverage(grades []models.StudentGrade) *float64 {
	var sum float64
	graded := false
	for _, g := range grades {
		if g.Score == nil {
			continue
		}
		graded = true
		sum += *g.Score * g.Weight / 100
	}
	if !graded {
		return nil
	}
	avg := math.Round(sum*100) / 100
	return &avg
}
