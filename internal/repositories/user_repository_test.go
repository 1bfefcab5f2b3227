package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/gradesystem/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupUserTestRepository creates a user repository with a mock database
func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewUserRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewUserRepository(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	db := &sql.DB{}

	repo := NewUserRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestUserRepository_Create(t *testing.T) {
	insertQuery := regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, role)")

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectedID    int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertQuery).
					WithArgs("Ana", "ana@x.com", "salthash", "estudiante").
					WillReturnResult(sqlmock.NewResult(7, 1))
			},
			expectedID: 7,
		},
		{
			name: "duplicate email",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertQuery).
					WithArgs("Ana", "ana@x.com", "salthash", "estudiante").
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ana@x.com' for key 'email'"})
			},
			expectedError: models.ErrDuplicateAccount,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertQuery).
					WithArgs("Ana", "ana@x.com", "salthash", "estudiante").
					WillReturnError(errors.New("connection refused"))
			},
			expectedError: models.ErrStoreUnavailable,
		},
		{
			name: "last insert id error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertQuery).
					WithArgs("Ana", "ana@x.com", "salthash", "estudiante").
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no id")))
			},
			expectedError: models.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user := &models.User{Name: "Ana", Email: "ana@x.com", PasswordHash: "salthash", Role: models.RoleStudent}
			err := repo.Create(context.Background(), user)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, user.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	selectQuery := regexp.QuoteMeta("SELECT id, name, email, password_hash, role") + ".*" + regexp.QuoteMeta("WHERE email = ?")
	columns := []string{"id", "name", "email", "password_hash", "role"}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectedUser  *models.User
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).
					WithArgs("ana@x.com").
					WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "Ana", "ana@x.com", "salthash", "estudiante"))
			},
			expectedUser: &models.User{ID: 1, Name: "Ana", Email: "ana@x.com", PasswordHash: "salthash", Role: models.RoleStudent},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).
					WithArgs("ana@x.com").
					WillReturnRows(sqlmock.NewRows(columns))
			},
			expectedError: models.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).
					WithArgs("ana@x.com").
					WillReturnError(errors.New("database error"))
			},
			expectedError: models.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user, err := repo.GetByEmail(context.Background(), "ana@x.com")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role"}).
			AddRow(3, "Luis", "luis@x.com", "salthash", "profesor"))

	user, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.RoleProfessor, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateCredential(t *testing.T) {
	updateQuery := regexp.QuoteMeta("UPDATE users SET password_hash = ? WHERE id = ?")

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(updateQuery).WithArgs("newcred", 1).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing user",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(updateQuery).WithArgs("newcred", 1).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: models.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(updateQuery).WithArgs("newcred", 1).WillReturnError(errors.New("database error"))
			},
			expectedError: models.ErrStoreUnavailable,
		},
		{
			name: "rows affected error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(updateQuery).WithArgs("newcred", 1).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows error")))
			},
			expectedError: models.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.UpdateCredential(context.Background(), 1, "newcred")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "name and email",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = ?, email = ? WHERE id = ? AND role = ?")).
					WithArgs("Ana B", "anab@x.com", 4, "estudiante").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "no matching row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = ?, email = ? WHERE id = ? AND role = ?")).
					WithArgs("Ana B", "anab@x.com", 4, "estudiante").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: models.ErrNotFound,
		},
		{
			name: "email taken",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = ?, email = ? WHERE id = ? AND role = ?")).
					WithArgs("Ana B", "anab@x.com", 4, "estudiante").
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			expectedError: models.ErrDuplicateAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Update(context.Background(), 4, models.RoleStudent, "Ana B", "anab@x.com")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Delete(t *testing.T) {
	deleteQuery := regexp.QuoteMeta("DELETE FROM users WHERE id = ? AND role = ?")

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectExec(deleteQuery).WithArgs(5, "profesor").WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 5, models.RoleProfessor))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong role or missing", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectExec(deleteQuery).WithArgs(5, "estudiante").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 5, models.RoleStudent), models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectExec(deleteQuery).WithArgs(5, "profesor").WillReturnError(errors.New("database error"))

		assert.ErrorIs(t, repo.Delete(context.Background(), 5, models.RoleProfessor), models.ErrStoreUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_List(t *testing.T) {
	listQuery := regexp.QuoteMeta("SELECT id, name, email, role") + ".*" + regexp.QuoteMeta("ORDER BY id")

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow(1, "Marta", "marta@x.com", "director").
			AddRow(2, "Ana", "ana@x.com", "estudiante")
		mock.ExpectQuery(listQuery).WillReturnRows(rows)

		users, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, models.RoleDirector, users[0].Role)
		assert.Equal(t, "ana@x.com", users[1].Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(listQuery).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}))

		users, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("scan error", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "name", "email", "role"}).AddRow("invalid", "Ana", "ana@x.com", "estudiante")
		mock.ExpectQuery(listQuery).WillReturnRows(rows)

		users, err := repo.List(context.Background())
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
		assert.Nil(t, users)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(listQuery).WillReturnError(errors.New("database error"))

		_, err := repo.List(context.Background())
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	})
}

func TestUserRepository_Totals(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("profesor", "estudiante").
		WillReturnRows(sqlmock.NewRows([]string{"total_professors", "total_students"}).AddRow(3, 41))

	totals, err := repo.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.UserTotals{Professors: 3, Students: 41}, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}
