package domain

import (
	"time"

	"github.com/google/uuid"
)

type HoldStatus string

const (
	HoldStatusPending   HoldStatus = "pending"
	HoldStatusReleased  HoldStatus = "released"
	HoldStatusCancelled HoldStatus = "cancelled"
)

// HoldAction selects a resolution path for a pending hold.
type HoldAction string

const (
	HoldActionRelease HoldAction = "release"
	HoldActionCancel  HoldAction = "cancel"
)

// ValidateHoldTransition is the single place hold transitions are checked.
// Released and cancelled are terminal.
func ValidateHoldTransition(from, to HoldStatus) error {
	if from == HoldStatusPending && (to == HoldStatusReleased || to == HoldStatusCancelled) {
		return nil
	}
	return ErrInvalidTransition
}

// CreditHold escrows seller proceeds in pending_balance until maturity.
// Exactly one hold exists per completed order. Notes are append-only audit
// history; storage never overwrites existing entries.
type CreditHold struct {
	ID         uuid.UUID
	SellerID   uuid.UUID
	OrderID    uuid.UUID
	Amount     int64
	Status     HoldStatus
	MatureAt   time.Time
	ResolvedAt *time.Time
	Notes      []string
	CreatedAt  time.Time
}

// Mature reports whether the hold is eligible for time-triggered release.
func (h CreditHold) Mature(now time.Time) bool {
	return h.Status == HoldStatusPending && !h.MatureAt.After(now)
}
