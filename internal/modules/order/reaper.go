package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/predobro/internal/modules/inventory"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

func (s *service) ReclaimAbandonedCarts(ctx context.Context, idleFor time.Duration) (int, error) {
	if idleFor <= 0 {
		return 0, nil
	}
	ids, err := s.repo.ListStaleCarts(ctx, s.now().Add(-idleFor))
	if err != nil {
		return 0, fmt.Errorf("list stale carts: %w", err)
	}

	reclaimed := 0
	for _, id := range ids {
		ok, err := s.reclaimCart(ctx, id, idleFor)
		if err != nil {
			return reclaimed, fmt.Errorf("reclaim cart %s: %w", id, err)
		}
		if ok {
			reclaimed++
		}
	}
	if reclaimed > 0 {
		zap.S().Infow("reclaimed abandoned carts", "count", reclaimed, "idle_for", idleFor.String())
	}
	return reclaimed, nil
}

// reclaimCart re-checks the cart under lock, since the customer may have
// touched or submitted it after it was listed.
func (s *service) reclaimCart(ctx context.Context, id uuid.UUID, idleFor time.Duration) (bool, error) {
	reclaimed := false
	err := s.repo.InTx(ctx, func(q Queries) error {
		o, err := q.GetOrder(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		cart, err := q.FindCart(ctx, o.CustomerID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if cart.ID != id || cart.UpdatedAt.After(s.now().Add(-idleFor)) {
			return nil
		}

		for _, l := range cart.Items {
			err := inventory.Release(ctx, q.Stock(), l.ItemID, l.Quantity)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return err
			}
		}
		if err := q.DeleteOrder(ctx, cart.ID); err != nil {
			return err
		}
		reclaimed = true
		return nil
	})
	return reclaimed, err
}
