package domain

import (
	"errors"
	"fmt"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientStockError names the channel whose conditional debit failed.
type InsufficientStockError struct {
	Channel Channel
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough %s ml available", e.Channel)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
