package domain

import (
	"time"

	"github.com/google/uuid"
)

type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "available"
	UnitStatusSold      UnitStatus = "sold"
)

// InventoryUnit is one sellable item (an account, a key, a code). Once sold
// it carries a single immutable buyer reference.
type InventoryUnit struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Payload   string
	Status    UnitStatus
	BuyerID   *uuid.UUID
	SoldAt    *time.Time
	CreatedAt time.Time
}
