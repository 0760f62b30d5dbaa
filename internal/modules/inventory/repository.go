package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for a store's own items.
type Repository interface {
	CreateItem(ctx context.Context, item *Item) error

	// GetItem returns a live item owned by storeID. Tombstoned items and items
	// of other stores are ErrNotFound.
	GetItem(ctx context.Context, storeID, id uuid.UUID) (*Item, error)

	ListItemsByStore(ctx context.Context, storeID uuid.UUID) ([]*Item, error)

	// UpdateItem overwrites the editable fields and bumps the version, but
	// only while the stored version equals item.Version. A stale version is
	// ErrConflict.
	UpdateItem(ctx context.Context, item *Item) error

	// SoftDeleteItem tombstones the item. Lines that reference it keep
	// pointing at the row.
	SoftDeleteItem(ctx context.Context, storeID, id uuid.UUID) error
}

// StockStore is the narrow view of items used while reserving and releasing
// stock. Implementations are usually bound to the caller's transaction.
type StockStore interface {
	// LoadStock returns the current quantity and version of an item,
	// including tombstoned ones. Missing items are ErrNotFound.
	LoadStock(ctx context.Context, itemID uuid.UUID) (Stock, error)

	// CompareAndSetStock writes quantity and bumps the version only if the
	// stored version still equals version. It reports whether the write won.
	CompareAndSetStock(ctx context.Context, itemID uuid.UUID, version int64, quantity int) (bool, error)
}

// Stock is a point-in-time read of an item's quantity.
type Stock struct {
	Quantity int
	Version  int64
	Deleted  bool
}
