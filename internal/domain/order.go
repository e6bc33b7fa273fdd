package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Order is an immutable purchase record. Line items and amounts never change
// after creation; only the dispute processor may flip status to refunded.
type Order struct {
	ID          uuid.UUID
	BuyerID     uuid.UUID
	SellerID    uuid.UUID
	ProductID   uuid.UUID
	UnitIDs     []uuid.UUID
	Quantity    int
	UnitPrice   int64
	TotalAmount int64
	Status      OrderStatus
	CreatedAt   time.Time
}
