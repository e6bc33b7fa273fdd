package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification event types written to the outbox inside financial
// transactions and delivered after commit.
const (
	EventOrderCreated    = "order.created"
	EventProductSold     = "product.sold"
	EventHoldReleased    = "hold.released"
	EventHoldCancelled   = "hold.cancelled"
	EventDisputeResolved = "dispute.resolved"
	EventRefundProcessed = "refund.processed"
	EventTopUpCredited   = "topup.credited"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxEvent is a notification queued in the same transaction as the
// mutation it describes. The dispatcher drains it after commit, so a slow or
// failing notifier can never roll back or block the financial flow.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	AggregateID uuid.UUID
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// NewOutboxEvent marshals payload and returns a pending event.
func NewOutboxEvent(eventType string, aggregateID uuid.UUID, payload any, now time.Time) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return OutboxEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     body,
		Status:      OutboxStatusPending,
		CreatedAt:   now,
	}, nil
}
