package models

import "time"

// OrderType determines which location identifier an order must carry.
type OrderType string

const (
	OrderRestaurant OrderType = "RESTAURANT"  // requires table number
	OrderHotelGuest OrderType = "HOTEL_GUEST" // requires room number
	OrderWalkIn     OrderType = "WALK_IN"     // requires neither
)

// OrderStatus is the POS order lifecycle. Transitions are forward-only;
// Cancelled is reachable from any non-terminal state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderServed    OrderStatus = "SERVED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderServed || s == OrderCancelled
}

// OrderItem is one line of a POS order.
type OrderItem struct {
	ItemRef   string `json:"item_ref" validate:"required"`
	Name      string `json:"name" validate:"required,max=100"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice int64  `json:"unit_price" validate:"required,gte=0"` // minor units
}

// Order is owned by the POS session, not the folio. The folio only ever
// holds the charge derived from an order once it reaches Served.
type Order struct {
	ID          string      `json:"id"`
	Type        OrderType   `json:"type"`
	TableNumber *int        `json:"table_number,omitempty"`
	RoomNumber  *string     `json:"room_number,omitempty"`
	FolioID     string      `json:"folio_id,omitempty"` // hotel-guest orders bill to a folio
	Items       []OrderItem `json:"items"`
	Discount    int64       `json:"discount"` // minor units
	Tax         int64       `json:"tax"`      // minor units
	Currency    string      `json:"currency"`
	Status      OrderStatus `json:"status"`
	// StatusVersion increments on every accepted transition. The terminal
	// transition is exactly-once: a retry carrying a stale version is
	// detected and suppressed instead of double-billing.
	StatusVersion int       `json:"status_version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Subtotal sums quantity times unit price over all items, in minor units.
func (o *Order) Subtotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Quantity * it.UnitPrice
	}
	return total
}

// Total is subtotal minus discount plus tax.
func (o *Order) Total() int64 {
	return o.Subtotal() - o.Discount + o.Tax
}

// CreateOrderRequest is the POS order intake shape.
type CreateOrderRequest struct {
	Type        OrderType   `json:"type" validate:"required,oneof=RESTAURANT HOTEL_GUEST WALK_IN"`
	TableNumber *int        `json:"table_number,omitempty"`
	RoomNumber  *string     `json:"room_number,omitempty"`
	FolioID     string      `json:"folio_id,omitempty"`
	Items       []OrderItem `json:"items" validate:"required,min=1,max=50,dive"`
	Discount    int64       `json:"discount" validate:"gte=0"`
	Tax         int64       `json:"tax" validate:"gte=0"`
	Currency    string      `json:"currency" validate:"required,len=3"`
}
