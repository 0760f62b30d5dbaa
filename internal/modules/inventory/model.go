package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a product a store lists with a stock quantity. Quantity never goes
// below zero; every stock write bumps Version.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url,omitempty"`
	Version     int64           `json:"version"`
	DeletedAt   *time.Time      `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Deleted reports whether the item has been tombstoned by its store.
func (i *Item) Deleted() bool { return i.DeletedAt != nil }

// ItemRequest is the payload for creating or updating an item. The owning
// store always comes from the authenticated actor.
type ItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url,max=500"`
	// Version, when sent on update, must match the item's current version.
	Version *int64 `json:"version,omitempty"`
}
