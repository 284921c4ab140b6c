package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/port"
)

var ErrInvalidDelivery = errors.New("invalid delivery")

// DeliveryReconciler records delivered bottles in the catalog and debits the
// liquid they were made from, all in one unit of work.
type DeliveryReconciler struct {
	repo  port.InventoryRepository
	namer func() string
	price int
}

func NewDeliveryReconciler(repo port.InventoryRepository, namer func() string, price int) *DeliveryReconciler {
	if namer == nil {
		namer = GeneratePotionName
	}
	return &DeliveryReconciler{repo: repo, namer: namer, price: price}
}

// Reconcile applies every item or none. A short channel aborts the whole
// delivery with *domain.InsufficientStockError.
func (r *DeliveryReconciler) Reconcile(ctx context.Context, items []domain.DeliveryItem) error {
	if err := validateDelivery(items); err != nil {
		return err
	}

	return r.repo.WithinTx(ctx, func(uow port.UnitOfWork) error {
		for _, item := range items {
			if item.Quantity == 0 {
				continue
			}
			if err := r.upsertPotion(ctx, uow, item); err != nil {
				return err
			}

			debit := item.Signature.Debit(item.Quantity)
			for _, ch := range domain.Channels {
				if debit[ch] == 0 {
					continue
				}
				ok, err := uow.DecrementLiquid(ctx, ch, debit[ch])
				if err != nil {
					return fmt.Errorf("decrement %s ml: %w", ch, err)
				}
				if !ok {
					return &domain.InsufficientStockError{Channel: ch}
				}
			}
		}
		return nil
	})
}

func (r *DeliveryReconciler) upsertPotion(ctx context.Context, uow port.UnitOfWork, item domain.DeliveryItem) error {
	existing, err := uow.FindPotion(ctx, item.Signature)
	if err != nil {
		return fmt.Errorf("find potion: %w", err)
	}
	if existing != nil {
		if err := uow.IncrementPotion(ctx, existing.ID, item.Quantity); err != nil {
			return fmt.Errorf("increment potion %d: %w", existing.ID, err)
		}
		return nil
	}

	name := r.namer()
	_, err = uow.InsertPotion(ctx, domain.Potion{
		Signature: item.Signature,
		Name:      name,
		SKU:       GenerateSKU(name),
		Price:     r.price,
		Quantity:  item.Quantity,
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, port.ErrDuplicatePotion) {
		return fmt.Errorf("insert potion: %w", err)
	}

	// A concurrent delivery created the entry first.
	existing, err = uow.FindPotion(ctx, item.Signature)
	if err != nil {
		return fmt.Errorf("find potion after conflict: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("potion %v conflicted but is not visible", item.Signature)
	}
	if err := uow.IncrementPotion(ctx, existing.ID, item.Quantity); err != nil {
		return fmt.Errorf("increment potion %d: %w", existing.ID, err)
	}
	return nil
}

func validateDelivery(items []domain.DeliveryItem) error {
	for i, item := range items {
		if item.Quantity < 0 {
			return fmt.Errorf("%w: item %d has negative quantity", ErrInvalidDelivery, i)
		}
		total := 0
		for _, part := range item.Signature {
			if part < 0 {
				return fmt.Errorf("%w: item %d has a negative part", ErrInvalidDelivery, i)
			}
			if part > math.MaxInt-total {
				return fmt.Errorf("%w: item %d composition is too large", ErrInvalidDelivery, i)
			}
			total += part
			// Debit multiplies part by quantity and must not wrap.
			if item.Quantity > 0 && part > math.MaxInt/item.Quantity {
				return fmt.Errorf("%w: item %d debit overflows", ErrInvalidDelivery, i)
			}
		}
		if total == 0 {
			return fmt.Errorf("%w: item %d has an empty composition", ErrInvalidDelivery, i)
		}
	}
	return nil
}
