package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
	ProductStatusDelisted ProductStatus = "delisted"
)

// Product is the catalog entry a purchase settles against. The catalog owns
// creation and moderation; the settlement core reads price/status and writes
// back sold counters after a reservation commits.
type Product struct {
	ID        uuid.UUID
	SellerID  uuid.UUID
	Name      string
	UnitPrice int64
	Status    ProductStatus
	SoldCount int
	SoldOut   bool
	CreatedAt time.Time
}

// Sellable is the advisory pre-check; the bounded reservation inside the
// purchase transaction is the authoritative availability test.
func (p Product) Sellable() bool {
	return p.Status == ProductStatusApproved && !p.SoldOut
}
