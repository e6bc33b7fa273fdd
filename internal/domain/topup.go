package domain

import (
	"time"

	"github.com/google/uuid"
)

// TopUp records one credited payment-gateway event. ExternalEventID is the
// idempotency key: each id credits a balance exactly once, replays are
// rejected.
type TopUp struct {
	ExternalEventID string
	UserID          uuid.UUID
	Amount          int64
	CreditedAt      time.Time
}
