package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

// maxStockAttempts bounds the read-check-write loop when another writer
// keeps winning the version race.
const maxStockAttempts = 5

// Reserve takes amount units out of the item's stock. It fails with
// ErrInsufficientStock, leaving the stock untouched, when fewer than amount
// units are available.
func Reserve(ctx context.Context, stock StockStore, itemID uuid.UUID, amount int) error {
	if amount <= 0 {
		return apperr.Invalid("quantity", "must be greater than 0")
	}
	return adjust(ctx, stock, itemID, func(s Stock) (int, error) {
		if s.Deleted {
			return 0, fmt.Errorf("item %s: %w", itemID, apperr.ErrNotFound)
		}
		if s.Quantity < amount {
			return 0, fmt.Errorf("item %s has %d left, %d requested: %w",
				itemID, s.Quantity, amount, apperr.ErrInsufficientStock)
		}
		return s.Quantity - amount, nil
	})
}

// Release puts amount units back. Tombstoned items get nothing back.
func Release(ctx context.Context, stock StockStore, itemID uuid.UUID, amount int) error {
	if amount <= 0 {
		return apperr.Invalid("quantity", "must be greater than 0")
	}
	return adjust(ctx, stock, itemID, func(s Stock) (int, error) {
		if s.Deleted {
			return s.Quantity, errSkip
		}
		return s.Quantity + amount, nil
	})
}

var errSkip = errors.New("skip write")

func adjust(ctx context.Context, stock StockStore, itemID uuid.UUID, next func(Stock) (int, error)) error {
	for attempt := 0; attempt < maxStockAttempts; attempt++ {
		cur, err := stock.LoadStock(ctx, itemID)
		if err != nil {
			return err
		}
		qty, err := next(cur)
		if errors.Is(err, errSkip) {
			return nil
		}
		if err != nil {
			return err
		}
		ok, err := stock.CompareAndSetStock(ctx, itemID, cur.Version, qty)
		if err != nil {
			return fmt.Errorf("write stock for item %s: %w", itemID, err)
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("item %s stock kept changing: %w", itemID, apperr.ErrConflict)
}
