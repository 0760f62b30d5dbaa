package order

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/modules/inventory"
	"github.com/georgemunganga/predobro/internal/modules/user"
)

// Service defines the cart, order and fulfillment business logic. Every
// call takes the acting user explicitly.
type Service interface {
	// AddToCart puts one unit of an item in the customer's cart, creating the
	// cart on first use. Out-of-stock items are a silent no-op.
	AddToCart(ctx context.Context, actor access.Actor, itemID uuid.UUID) (*AddToCartResult, error)

	// UpdateQuantity sets a cart line's quantity, reserving or releasing the
	// difference. A quantity of zero or less removes the line.
	UpdateQuantity(ctx context.Context, actor access.Actor, lineID uuid.UUID, quantity int) (*OrderView, error)

	// RemoveFromCart deletes a cart line and releases its stock.
	RemoveFromCart(ctx context.Context, actor access.Actor, lineID uuid.UUID) (*OrderView, error)

	// ViewCart returns the customer's cart, or nil if there is none.
	ViewCart(ctx context.Context, actor access.Actor) (*OrderView, error)

	// CartItemCount sums the quantities in the customer's cart.
	CartItemCount(ctx context.Context, actor access.Actor) (int, error)

	// Checkout submits the customer's non-empty cart.
	Checkout(ctx context.Context, actor access.Actor) (*OrderView, error)

	// DeleteOrder removes a submitted order and gives its stock back.
	DeleteOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) error

	// ListHistory returns the customer's submitted orders, newest first.
	ListHistory(ctx context.Context, actor access.Actor) ([]*OrderView, error)

	// GetOrder returns one of the customer's submitted orders.
	GetOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderView, error)

	// ListStoreOrders returns the submitted orders holding the store's items.
	// Unless includeCompleted is set, orders whose store lines are all
	// completed are left out.
	ListStoreOrders(ctx context.Context, actor access.Actor, includeCompleted bool) ([]*OrderView, error)

	// ExportStoreOrders writes the store's visible lines as CSV.
	ExportStoreOrders(ctx context.Context, actor access.Actor, w io.Writer) error

	// UpdateOrderItemStatus moves one of the store's lines forward.
	UpdateOrderItemStatus(ctx context.Context, actor access.Actor, lineID uuid.UUID, status string) (*OrderItem, error)

	// ReclaimAbandonedCarts deletes carts idle for longer than idleFor and
	// gives their stock back. It returns how many carts were removed.
	ReclaimAbandonedCarts(ctx context.Context, idleFor time.Duration) (int, error)
}

// CustomerDirectory resolves customer contact details for store views.
type CustomerDirectory interface {
	ListUsersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*user.User, error)
}

type service struct {
	repo      Repository
	customers CustomerDirectory
	now       func() time.Time
}

// NewService creates a new order service.
func NewService(repo Repository, customers CustomerDirectory) Service {
	return &service{repo: repo, customers: customers, now: time.Now}
}

// views joins orders with their items. Customer details are attached when
// withCustomer is set.
func (s *service) views(ctx context.Context, q Queries, orders []*Order, withCustomer bool) ([]*OrderView, error) {
	var itemIDs, customerIDs []uuid.UUID
	for _, o := range orders {
		customerIDs = append(customerIDs, o.CustomerID)
		for _, l := range o.Items {
			itemIDs = append(itemIDs, l.ItemID)
		}
	}
	items, err := q.ItemsByID(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	var customers map[uuid.UUID]*user.User
	if withCustomer {
		if customers, err = s.customers.ListUsersByID(ctx, customerIDs); err != nil {
			return nil, err
		}
	}

	out := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		v := buildView(o, items)
		if u, ok := customers[o.CustomerID]; ok {
			v.Customer = &Customer{
				ID:       u.ID,
				FullName: u.FullName,
				Email:    u.Email,
				Phone:    u.Phone,
				Address:  u.Address,
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *service) view(ctx context.Context, q Queries, o *Order) (*OrderView, error) {
	vs, err := s.views(ctx, q, []*Order{o}, false)
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func buildView(o *Order, items map[uuid.UUID]*inventory.Item) *OrderView {
	v := &OrderView{
		ID:          o.ID,
		Submitted:   o.Submitted,
		SubmittedAt: o.SubmittedAt,
		CreatedAt:   o.CreatedAt,
		Status:      OverallStatus(o.Items),
		Lines:       make([]LineView, 0, len(o.Items)),
		Total:       decimal.Zero,
	}
	for _, l := range o.Items {
		lv := LineView{
			ID:       l.ID,
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			Status:   l.Status,
		}
		if it, ok := items[l.ItemID]; ok {
			lv.StoreID = it.StoreID
			lv.Name = it.Name
			lv.ImageURL = it.ImageURL
			lv.UnitPrice = it.Price
			lv.LineTotal = it.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
			lv.Unavailable = it.Deleted()
		} else {
			lv.Unavailable = true
		}
		v.Total = v.Total.Add(lv.LineTotal)
		v.ItemCount += l.Quantity
		v.Lines = append(v.Lines, lv)
	}
	return v
}
