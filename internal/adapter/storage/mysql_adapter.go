package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/potion-bottler/internal/adapter/storage/migrations"
	"github.com/rl1809/potion-bottler/internal/port"
)

const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrLockDeadlock   = 1213
	mysqlTxAttempts        = 5
	mysqlRetryBackoff      = 10 * time.Millisecond
)

var _ port.InventoryRepository = (*MySQLAdapter)(nil)

// MySQLAdapter is the production inventory and catalog store.
type MySQLAdapter struct {
	*sqlRepository
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{&sqlRepository{
		db: db,
		dialect: dialect{
			// A locking read sees rows committed after the snapshot was taken,
			// which the duplicate-insert fallback relies on.
			lockSuffix:        " FOR UPDATE",
			isUniqueViolation: isMySQLError(mysqlErrDuplicateEntry),
			isRetryable:       isMySQLError(mysqlErrLockDeadlock),
			maxAttempts:       mysqlTxAttempts,
			retryBackoff:      mysqlRetryBackoff,
		},
	}}
}

// Migrate applies the embedded MySQL schema.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	if err := applyMigrations(ctx, m.db, migrations.MySQL, "mysql"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func isMySQLError(number uint16) func(error) bool {
	return func(err error) bool {
		var mysqlErr *mysql.MySQLError
		return errors.As(err, &mysqlErr) && mysqlErr.Number == number
	}
}
