package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/port"
)

// liquidColumns maps each channel to its global_inventory column.
var liquidColumns = [domain.NumChannels]string{"num_green_ml", "num_red_ml", "num_blue_ml", "num_dark_ml"}

// dialect captures what differs between the SQL engines behind the repository.
type dialect struct {
	// lockSuffix is appended to catalog lookups made inside a unit of work.
	lockSuffix        string
	isUniqueViolation func(error) bool
	isRetryable       func(error) bool
	maxAttempts       int
	retryBackoff      time.Duration
}

// sqlRepository implements port.InventoryRepository over database/sql.
type sqlRepository struct {
	db      *sql.DB
	dialect dialect
}

var _ port.InventoryRepository = (*sqlRepository)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Close closes the underlying database handle.
func (r *sqlRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *sqlRepository) GetLiquidInventory(ctx context.Context) (domain.LiquidInventory, error) {
	var inv domain.LiquidInventory
	err := r.db.QueryRowContext(ctx, `
		SELECT num_green_ml, num_red_ml, num_blue_ml, num_dark_ml
		FROM global_inventory WHERE id = 1`,
	).Scan(&inv[domain.Green], &inv[domain.Red], &inv[domain.Blue], &inv[domain.Dark])

	if errors.Is(err, sql.ErrNoRows) {
		return domain.LiquidInventory{}, nil
	}
	if err != nil {
		return domain.LiquidInventory{}, fmt.Errorf("query liquid inventory: %w", err)
	}
	return inv, nil
}

// SetLiquidInventory overwrites every channel. It is an operator action, not
// part of reconciliation.
func (r *sqlRepository) SetLiquidInventory(ctx context.Context, inv domain.LiquidInventory) error {
	for _, ml := range inv {
		if ml < 0 {
			return fmt.Errorf("liquid inventory cannot be negative: %v", inv)
		}
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE global_inventory
		SET num_green_ml = ?, num_red_ml = ?, num_blue_ml = ?, num_dark_ml = ?, updated_at = ?
		WHERE id = 1`,
		inv[domain.Green], inv[domain.Red], inv[domain.Blue], inv[domain.Dark], toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("update liquid inventory: %w", err)
	}
	return nil
}

// ListPotions returns the whole catalog ordered by id.
func (r *sqlRepository) ListPotions(ctx context.Context) ([]domain.Potion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, green, red, blue, dark, name, sku, price, quantity, created_at, updated_at
		FROM potions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query potions: %w", err)
	}
	defer rows.Close()

	var potions []domain.Potion
	for rows.Next() {
		p, err := scanPotion(rows)
		if err != nil {
			return nil, err
		}
		potions = append(potions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate potions: %w", err)
	}
	return potions, nil
}

func (r *sqlRepository) WithinTx(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	attempts := r.dialect.maxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = r.runTx(ctx, fn)
		if err == nil || r.dialect.isRetryable == nil || !r.dialect.isRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * r.dialect.retryBackoff):
		}
	}
	return fmt.Errorf("unit of work failed after %d attempts: %w", attempts, err)
}

func (r *sqlRepository) runTx(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlUnitOfWork{tx: tx, dialect: r.dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type sqlUnitOfWork struct {
	tx      *sql.Tx
	dialect dialect
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPotion(row rowScanner) (*domain.Potion, error) {
	var (
		p                    domain.Potion
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&p.ID,
		&p.Signature[domain.Green], &p.Signature[domain.Red], &p.Signature[domain.Blue], &p.Signature[domain.Dark],
		&p.Name, &p.SKU, &p.Price, &p.Quantity, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

func (u *sqlUnitOfWork) FindPotion(ctx context.Context, sig domain.Signature) (*domain.Potion, error) {
	row := u.tx.QueryRowContext(ctx, `
		SELECT id, green, red, blue, dark, name, sku, price, quantity, created_at, updated_at
		FROM potions
		WHERE green = ? AND red = ? AND blue = ? AND dark = ?`+u.dialect.lockSuffix,
		sig[domain.Green], sig[domain.Red], sig[domain.Blue], sig[domain.Dark],
	)
	p, err := scanPotion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query potion: %w", err)
	}
	return p, nil
}

func (u *sqlUnitOfWork) InsertPotion(ctx context.Context, potion domain.Potion) (int64, error) {
	now := toMillis(time.Now())
	sig := potion.Signature
	result, err := u.tx.ExecContext(ctx, `
		INSERT INTO potions (green, red, blue, dark, name, sku, price, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sig[domain.Green], sig[domain.Red], sig[domain.Blue], sig[domain.Dark],
		potion.Name, potion.SKU, potion.Price, potion.Quantity, now, now,
	)
	if err != nil {
		if u.dialect.isUniqueViolation != nil && u.dialect.isUniqueViolation(err) {
			return 0, port.ErrDuplicatePotion
		}
		return 0, fmt.Errorf("insert potion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("potion id: %w", err)
	}
	return id, nil
}

func (u *sqlUnitOfWork) IncrementPotion(ctx context.Context, id int64, quantity int) error {
	result, err := u.tx.ExecContext(ctx, `
		UPDATE potions
		SET quantity = quantity + ?, updated_at = ?
		WHERE id = ?`,
		quantity, toMillis(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update potion: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("potion %d not found", id)
	}
	return nil
}

func (u *sqlUnitOfWork) DecrementLiquid(ctx context.Context, ch domain.Channel, ml int) (bool, error) {
	if ch < 0 || int(ch) >= domain.NumChannels {
		return false, fmt.Errorf("unknown channel %d", int(ch))
	}
	if ml < 0 {
		return false, fmt.Errorf("negative debit %d for %s", ml, ch)
	}
	col := liquidColumns[ch]

	result, err := u.tx.ExecContext(ctx,
		`UPDATE global_inventory SET `+col+` = `+col+` - ?, updated_at = ? WHERE id = 1 AND `+col+` >= ?`,
		ml, toMillis(time.Now()), ml,
	)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", col, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}
