package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// userRepository is the MySQL account store
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user and sets its ID.
// A duplicate email returns models.ErrDuplicateAccount.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			return models.ErrDuplicateAccount
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return storeError("failed to create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return storeError("failed to get last insert id", err)
	}

	user.ID = int(id)
	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	return r.getOne(ctx, query, email)
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role
		FROM users
		WHERE id = ?
	`

	return r.getOne(ctx, query, id)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user", zap.Error(err))
		return nil, storeError("failed to get user", err)
	}

	return user, nil
}

// UpdateCredential replaces the stored credential of a user
func (r *userRepository) UpdateCredential(ctx context.Context, id int, credential string) error {
	query := `UPDATE users SET password_hash = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, credential, id)
	if err != nil {
		r.logger.Error("failed to update credential", zap.Error(err), zap.Int("user_id", id))
		return storeError("failed to update credential", err)
	}

	return expectAffected(result, r.logger, "failed to update credential")
}

// Update edits name and email of the user with the given ID and role
func (r *userRepository) Update(ctx context.Context, id int, role models.Role, name, email string) error {
	query := `UPDATE users SET name = ?, email = ? WHERE id = ? AND role = ?`

	result, err := r.db.ExecContext(ctx, query, name, email, id, role)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			return models.ErrDuplicateAccount
		}
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("user_id", id))
		return storeError("failed to update user", err)
	}

	return expectAffected(result, r.logger, "failed to update user")
}

// Delete removes the user with the given ID and role
func (r *userRepository) Delete(ctx context.Context, id int, role models.Role) error {
	query := `DELETE FROM users WHERE id = ? AND role = ?`

	result, err := r.db.ExecContext(ctx, query, id, role)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("user_id", id))
		return storeError("failed to delete user", err)
	}

	return expectAffected(result, r.logger, "failed to delete user")
}

// List returns all users ordered by ID, without credentials
func (r *userRepository) List(ctx context.Context) ([]models.UserListItem, error) {
	query := `
		SELECT id, name, email, role
		FROM users
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, storeError("failed to query users", err)
	}
	defer rows.Close()

	users := []models.UserListItem{}
	for rows.Next() {
		var u models.UserListItem
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, storeError("failed to scan user", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, storeError("error iterating rows", err)
	}

	return users, nil
}

// Totals counts professors and students
func (r *userRepository) Totals(ctx context.Context) (*models.UserTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(role = ?), 0) AS total_professors,
			COALESCE(SUM(role = ?), 0) AS total_students
		FROM users
	`

	totals := &models.UserTotals{}
	err := r.db.QueryRowContext(ctx, query, models.RoleProfessor, models.RoleStudent).Scan(&totals.Professors, &totals.Students)
	if err != nil {
		r.logger.Error("failed to count users", zap.Error(err))
		return nil, storeError("failed to count users", err)
	}

	return totals, nil
}
