package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

// Status is the fulfillment state of a single order line.
type Status string

const (
	StatusProcessing     Status = "PROCESSING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusCompleted      Status = "COMPLETED"
)

// validTransitions only moves forward. Re-setting the current status is
// handled as a no-op by the caller.
var validTransitions = map[Status][]Status{
	StatusProcessing:     {StatusReadyForPickup, StatusCompleted},
	StatusReadyForPickup: {StatusCompleted},
	StatusCompleted:      {},
}

// CanTransition returns true if the transition from current to next is valid.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := validTransitions[st]; !ok {
		return "", apperr.Invalid("status", "must be one of: PROCESSING, READY_FOR_PICKUP, COMPLETED")
	}
	return st, nil
}

// OverallStatus aggregates line statuses: Completed when every line is,
// ReadyForPickup when every line is at least ready, Processing otherwise
// (including no lines at all).
func OverallStatus(lines []*OrderItem) Status {
	if len(lines) == 0 {
		return StatusProcessing
	}
	allCompleted, allReady := true, true
	for _, l := range lines {
		switch l.Status {
		case StatusCompleted:
		case StatusReadyForPickup:
			allCompleted = false
		default:
			allCompleted, allReady = false, false
		}
	}
	switch {
	case allCompleted:
		return StatusCompleted
	case allReady:
		return StatusReadyForPickup
	default:
		return StatusProcessing
	}
}

// Order is a customer's cart while Submitted is false, and an immutable
// order afterwards (line statuses aside).
type Order struct {
	ID          uuid.UUID    `json:"id"`
	CustomerID  uuid.UUID    `json:"customer_id"`
	Submitted   bool         `json:"submitted"`
	SubmittedAt *time.Time   `json:"submitted_at,omitempty"`
	Items       []*OrderItem `json:"items"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// OrderItem is one line of an order. Quantity is the amount reserved from
// the item's stock.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineView is an order line joined with its item.
type LineView struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    uuid.UUID       `json:"item_id"`
	StoreID   uuid.UUID       `json:"store_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Status    Status          `json:"status"`
	// Unavailable marks lines whose item the store has since removed.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Customer is the contact block shown to stores on their orders.
type Customer struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	Address  string    `json:"address,omitempty"`
}

// OrderView is what customers and stores get back. For stores, Lines holds
// only their own lines and Status is computed over those.
type OrderView struct {
	ID          uuid.UUID       `json:"id"`
	Submitted   bool            `json:"submitted"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Status      Status          `json:"status"`
	Lines       []LineView      `json:"lines"`
	ItemCount   int             `json:"item_count"`
	Total       decimal.Decimal `json:"total"`
	Customer    *Customer       `json:"customer,omitempty"`
}

// AddToCartResult reports whether a unit was actually added. Added is false
// when the item was out of stock, in which case Cart is the unchanged cart
// (nil if the customer has none).
type AddToCartResult struct {
	Added bool       `json:"added"`
	Cart  *OrderView `json:"cart"`
}

// AddToCartRequest is the payload for putting one unit of an item in the cart.
type AddToCartRequest struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
}

// UpdateQuantityRequest sets a cart line's quantity. Zero or less removes it,
// so the field must be sent explicitly.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// UpdateStatusRequest is the payload for advancing a line's status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
