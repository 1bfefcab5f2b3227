package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/gradesystem/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupGradeTestRepository(t *testing.T) (*gradeRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	return NewGradeRepository(db, logger), mock, func() { db.Close() }
}

func TestGradeRepository_Create(t *testing.T) {
	insertQuery := regexp.QuoteMeta("INSERT INTO grades (task_id, student_id, score, graded_at)")
	score := 95.0
	gradedAt := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		grade         *models.Grade
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name:  "scored grade",
			grade: &models.Grade{TaskID: 1, StudentID: 2, Score: &score, GradedAt: &gradedAt},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertQuery).
					WithArgs(1, 2, 95.0, gradedAt).
					WillReturnResult(sqlmock.NewResult(10, 1))
			},
		},
		{
			name:  "pending grade stores nulls",
			grade: &models.Grade{TaskID: 1, StudentID: 2},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertQuery).
					WithArgs(1, 2, nil, nil).
					WillReturnResult(sqlmock.NewResult(10, 1))
			},
		},
		{
			name:  "unknown task or student",
			grade: &models.Grade{TaskID: 99, StudentID: 2, Score: &score, GradedAt: &gradedAt},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertQuery).
					WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
			},
			expectedError: models.ErrNotFound,
		},
		{
			name:  "database error",
			grade: &models.Grade{TaskID: 1, StudentID: 2},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertQuery).WillReturnError(errors.New("database error"))
			},
			expectedError: models.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupGradeTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.grade)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 10, tt.grade.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGradeRepository_CountPending(t *testing.T) {
	countQuery := regexp.QuoteMeta("SELECT COUNT(*) FROM grades WHERE score IS NULL")

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupGradeTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.CountPending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 5, count)
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupGradeTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(countQuery).WillReturnError(sql.ErrConnDone)

		_, err := repo.CountPending(context.Background())
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	})
}

func TestGradeRepository_ListByStudent(t *testing.T) {
	listQuery := regexp.QuoteMeta("FROM grades g") + ".*" + regexp.QuoteMeta("WHERE g.student_id = ?")
	columns := []string{"id", "title", "weight", "score", "graded_at"}
	gradedAt := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	t.Run("mixed graded and pending", func(t *testing.T) {
		repo, mock, cleanup := setupGradeTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(columns).
			AddRow(1, "Ensayo", 30.0, 90.0, gradedAt).
			AddRow(2, "Examen", 70.0, nil, nil)
		mock.ExpectQuery(listQuery).WithArgs(2).WillReturnRows(rows)

		grades, err := repo.ListByStudent(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, grades, 2)

		require.NotNil(t, grades[0].Score)
		assert.Equal(t, 90.0, *grades[0].Score)
		require.NotNil(t, grades[0].GradedAt)
		assert.Equal(t, gradedAt, *grades[0].GradedAt)

		assert.Nil(t, grades[1].Score)
		assert.Nil(t, grades[1].GradedAt)
		assert.Equal(t, "Examen", grades[1].Task)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no grades", func(t *testing.T) {
		repo, mock, cleanup := setupGradeTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(listQuery).WithArgs(2).WillReturnRows(sqlmock.NewRows(columns))

		grades, err := repo.ListByStudent(context.Background(), 2)
		require.NoError(t, err)
		assert.Empty(t, grades)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock, cleanup := setupGradeTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(listQuery).WithArgs(2).WillReturnError(errors.New("database error"))

		_, err := repo.ListByStudent(context.Background(), 2)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	})
}
