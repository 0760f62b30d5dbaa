package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/predobro/internal/modules/geo"
)

// Listing is one in-stock item together with the store selling it.
type Listing struct {
	ItemID       uuid.UUID
	Name         string
	Description  string
	Price        decimal.Decimal
	Quantity     int
	ImageURL     string
	StoreID      uuid.UUID
	StoreName    string
	StoreAddress string
}

// Product is an item as shown on the browse page.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// Store groups a store's in-stock products with its map location.
type Store struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Address  string          `json:"address,omitempty"`
	Location geo.Coordinates `json:"location"`
	Products []Product       `json:"products"`
}
