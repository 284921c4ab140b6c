package port

import (
	"context"
	"errors"

	"github.com/rl1809/potion-bottler/internal/core/domain"
)

// ErrDuplicatePotion is returned by InsertPotion when the signature already exists.
var ErrDuplicatePotion = errors.New("duplicate potion signature")

type InventoryRepository interface {
	// GetLiquidInventory reads the current milliliters per channel
	GetLiquidInventory(ctx context.Context) (domain.LiquidInventory, error)

	// ListPotions returns every catalog entry
	ListPotions(ctx context.Context) ([]domain.Potion, error)

	// WithinTx runs fn in one transaction, committing only when fn returns nil
	WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// UnitOfWork exposes the catalog and inventory writes that share one transaction.
type UnitOfWork interface {
	// FindPotion looks up a catalog entry by exact signature, nil if absent
	FindPotion(ctx context.Context, sig domain.Signature) (*domain.Potion, error)

	// InsertPotion creates a catalog entry, ErrDuplicatePotion if the signature exists
	InsertPotion(ctx context.Context, potion domain.Potion) (int64, error)

	// IncrementPotion adds quantity to the on-hand count of a catalog entry
	IncrementPotion(ctx context.Context, id int64, quantity int) error

	// DecrementLiquid subtracts ml from a channel only if enough is left, returns false otherwise
	DecrementLiquid(ctx context.Context, ch domain.Channel, ml int) (bool, error)
}
