package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/modules/inventory"
)

// Queries is the data access used by cart, lifecycle and fulfillment
// operations. Lookups by id that find nothing return apperr.ErrNotFound.
type Queries interface {
	// Stock reserves and releases item stock within the same transaction.
	Stock() inventory.StockStore

	// ItemsByID resolves items, tombstoned ones included.
	ItemsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.Item, error)

	// FindCart returns the customer's unsubmitted order with its lines,
	// locking it for the rest of the transaction.
	FindCart(ctx context.Context, customerID uuid.UUID) (*Order, error)

	// CreateCart inserts o unless the customer already has a cart, in which
	// case it reports created=false and writes nothing.
	CreateCart(ctx context.Context, o *Order) (created bool, err error)

	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetLine(ctx context.Context, id uuid.UUID) (*OrderItem, error)
	InsertLine(ctx context.Context, line *OrderItem) error
	UpdateLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	UpdateLineStatus(ctx context.Context, id uuid.UUID, status Status) error
	DeleteLine(ctx context.Context, id uuid.UUID) error

	// TouchOrder records cart activity for the abandoned-cart reaper.
	TouchOrder(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error

	// DeleteOrder removes the order and all of its lines.
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// ListSubmittedByCustomer returns the customer's submitted orders,
	// newest submission first.
	ListSubmittedByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)

	// ListSubmittedForStore returns submitted orders holding at least one of
	// the store's items, newest first by creation. Each order carries only
	// the store's own lines.
	ListSubmittedForStore(ctx context.Context, storeID uuid.UUID) ([]*Order, error)

	// ListStaleCarts returns ids of carts last touched before cutoff.
	ListStaleCarts(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// Repository defines data access for orders.
type Repository interface {
	Queries

	// InTx runs fn in one transaction. Any error rolls back every write made
	// through the Queries handed to fn.
	InTx(ctx context.Context, fn func(q Queries) error) error
}
