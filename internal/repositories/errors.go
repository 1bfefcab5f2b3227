package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// MySQL server error numbers mapped to domain errors
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrNoReferencedRow = 1452
)

// storeError wraps a driver error so callers can match models.ErrStoreUnavailable
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
}

func isMySQLError(err error, number uint16) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == number
}

// expectAffected returns models.ErrNotFound when the statement touched no row
func expectAffected(result sql.Result, logger *zap.Logger, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		logger.Error("failed to get rows affected", zap.Error(err))
		return storeError(op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
