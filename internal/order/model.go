package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusPreparing, StatusReady, StatusDelivered:
		return true
	}
	return false
}

// Statuses lists every accepted status, in lifecycle order.
func Statuses() []Status {
	return []Status{StatusReceived, StatusPreparing, StatusReady, StatusDelivered}
}

// DishSummary is the slice of a dish that rides along with an order item in
// responses. The item's unit price is a snapshot taken at creation; the price
// here is the dish's current one and may differ for old orders.
type DishSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Category string    `json:"category"`
	Image    *string   `json:"image,omitempty"`
}

type Item struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	OrderID   uuid.UUID    `json:"orderId" db:"order_id"`
	DishID    uuid.UUID    `json:"dishId" db:"dish_id"`
	Quantity  int          `json:"quantity" db:"quantity"`
	UnitPrice float64      `json:"unitPrice" db:"unit_price"`
	Subtotal  float64      `json:"subtotal" db:"subtotal"`
	Dish      *DishSummary `json:"dish,omitempty" db:"-"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

type Order struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TotalValue float64   `json:"totalValue" db:"total_value"`
	Status     Status    `json:"status" db:"status"`
	Notes      *string   `json:"notes" db:"notes"`
	Items      []Item    `json:"items" db:"-"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
