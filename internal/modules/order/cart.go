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

func (s *service) AddToCart(ctx context.Context, actor access.Actor, itemID uuid.UUID) (*AddToCartResult, error) {
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return nil, err
	}

	var res *AddToCartResult
	err := s.repo.InTx(ctx, func(q Queries) error {
		items, err := q.ItemsByID(ctx, []uuid.UUID{itemID})
		if err != nil {
			return err
		}
		it, ok := items[itemID]
		if !ok || it.Deleted() {
			return fmt.Errorf("item %s: %w", itemID, apperr.ErrNotFound)
		}

		if it.Quantity == 0 {
			cart, err := q.FindCart(ctx, actor.ID)
			if errors.Is(err, apperr.ErrNotFound) {
				res = &AddToCartResult{}
				return nil
			}
			if err != nil {
				return err
			}
			v, err := s.view(ctx, q, cart)
			res = &AddToCartResult{Cart: v}
			return err
		}

		cart, err := s.findOrCreateCart(ctx, q, actor.ID)
		if err != nil {
			return err
		}
		if err := inventory.Reserve(ctx, q.Stock(), itemID, 1); err != nil {
			return err
		}

		if line := cart.line(itemID); line != nil {
			line.Quantity++
			if err := q.UpdateLineQuantity(ctx, line.ID, line.Quantity); err != nil {
				return err
			}
		} else {
			line := &OrderItem{
				ID:       uuid.New(),
				OrderID:  cart.ID,
				ItemID:   itemID,
				Quantity: 1,
				Status:   StatusProcessing,
			}
			if err := q.InsertLine(ctx, line); err != nil {
				return err
			}
			cart.Items = append(cart.Items, line)
		}
		if err := q.TouchOrder(ctx, cart.ID, s.now()); err != nil {
			return err
		}

		v, err := s.view(ctx, q, cart)
		res = &AddToCartResult{Added: true, Cart: v}
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) UpdateQuantity(ctx context.Context, actor access.Actor, lineID uuid.UUID, quantity int) (*OrderView, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, actor, lineID)
	}
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return nil, err
	}

	var v *OrderView
	err := s.repo.InTx(ctx, func(q Queries) error {
		cart, line, err := s.cartLine(ctx, q, actor.ID, lineID)
		if err != nil {
			return err
		}

		switch delta := quantity - line.Quantity; {
		case delta > 0:
			err = inventory.Reserve(ctx, q.Stock(), line.ItemID, delta)
		case delta < 0:
			err = inventory.Release(ctx, q.Stock(), line.ItemID, -delta)
		}
		if err != nil {
			return err
		}

		if quantity != line.Quantity {
			if err := q.UpdateLineQuantity(ctx, line.ID, quantity); err != nil {
				return err
			}
			line.Quantity = quantity
			if err := q.TouchOrder(ctx, cart.ID, s.now()); err != nil {
				return err
			}
		}
		v, err = s.view(ctx, q, cart)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) RemoveFromCart(ctx context.Context, actor access.Actor, lineID uuid.UUID) (*OrderView, error) {
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return nil, err
	}

	var v *OrderView
	err := s.repo.InTx(ctx, func(q Queries) error {
		cart, line, err := s.cartLine(ctx, q, actor.ID, lineID)
		if err != nil {
			return err
		}
		if err := inventory.Release(ctx, q.Stock(), line.ItemID, line.Quantity); err != nil {
			return err
		}
		if err := q.DeleteLine(ctx, line.ID); err != nil {
			return err
		}
		if err := q.TouchOrder(ctx, cart.ID, s.now()); err != nil {
			return err
		}

		cart.dropLine(line.ID)
		v, err = s.view(ctx, q, cart)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) ViewCart(ctx context.Context, actor access.Actor) (*OrderView, error) {
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return nil, err
	}
	cart, err := s.repo.FindCart(ctx, actor.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.repo, cart)
}

func (s *service) CartItemCount(ctx context.Context, actor access.Actor) (int, error) {
	if err := access.Require(actor, access.RoleCustomer); err != nil {
		return 0, err
	}
	cart, err := s.repo.FindCart(ctx, actor.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, l := range cart.Items {
		n += l.Quantity
	}
	return n, nil
}

// findOrCreateCart returns the customer's single cart. When a concurrent
// request creates it first, the insert is skipped and the winner's cart is
// read back. A customer without a user row is ErrNotFound.
func (s *service) findOrCreateCart(ctx context.Context, q Queries, customerID uuid.UUID) (*Order, error) {
	cart, err := q.FindCart(ctx, customerID)
	if !errors.Is(err, apperr.ErrNotFound) {
		return cart, err
	}

	known, err := s.customers.ListUsersByID(ctx, []uuid.UUID{customerID})
	if err != nil {
		return nil, err
	}
	if known[customerID] == nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, apperr.ErrNotFound)
	}

	cart = &Order{ID: uuid.New(), CustomerID: customerID, Items: []*OrderItem{}}
	created, err := q.CreateCart(ctx, cart)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	if created {
		return cart, nil
	}
	return q.FindCart(ctx, customerID)
}

// cartLine loads the actor's cart and one of its lines. A line in any other
// order is reported as not found.
func (s *service) cartLine(ctx context.Context, q Queries, customerID, lineID uuid.UUID) (*Order, *OrderItem, error) {
	cart, err := q.FindCart(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range cart.Items {
		if l.ID == lineID {
			return cart, l, nil
		}
	}
	return nil, nil, fmt.Errorf("cart line %s: %w", lineID, apperr.ErrNotFound)
}

func (o *Order) line(itemID uuid.UUID) *OrderItem {
	for _, l := range o.Items {
		if l.ItemID == itemID {
			return l
		}
	}
	return nil
}

func (o *Order) dropLine(id uuid.UUID) {
	kept := o.Items[:0]
	for _, l := range o.Items {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	o.Items = kept
}
