package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/modules/inventory"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

func (s *service) Checkout(ctx context.Context, actor access.Actor) (*OrderView, error) {
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return nil, err
	}

	var v *OrderView
	err := s.repo.InTx(ctx, func(q Queries) error {
		cart, err := q.FindCart(ctx, actor.ID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return apperr.ErrEmptyCart
		}

		// Stock was reserved as lines were added; submitting only freezes
		// the cart.
		at := s.now().UTC()
		if err := q.MarkSubmitted(ctx, cart.ID, at); err != nil {
			return err
		}
		cart.Submitted = true
		cart.SubmittedAt = &at

		v, err = s.view(ctx, q, cart)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) DeleteOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) error {
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return err
	}

	return s.repo.InTx(ctx, func(q Queries) error {
		o, err := s.ownSubmitted(ctx, q, actor.ID, orderID)
		if err != nil {
			return err
		}
		for _, l := range o.Items {
			err := inventory.Release(ctx, q.Stock(), l.ItemID, l.Quantity)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("release line %s: %w", l.ID, err)
			}
		}
		return q.DeleteOrder(ctx, o.ID)
	})
}

func (s *service) ListHistory(ctx context.Context, actor access.Actor) ([]*OrderView, error) {
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return nil, err
	}
	orders, err := s.repo.ListSubmittedByCustomer(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, s.repo, orders, false)
}

func (s *service) GetOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderView, error) {
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return nil, err
	}
	o, err := s.ownSubmitted(ctx, s.repo, actor.ID, orderID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.repo, o)
}

// ownSubmitted hides carts and other customers' orders behind ErrNotFound.
func (s *service) ownSubmitted(ctx context.Context, q Queries, customerID, orderID uuid.UUID) (*Order, error) {
	o, err := q.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID || !o.Submitted {
		return nil, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	return o, nil
}
