package postgres

import (
	"context"
	"fmt"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TopUpRepository struct {
	db
}

func NewTopUpRepository(pool *pgxpool.Pool) *TopUpRepository {
	return &TopUpRepository{db: db{pool: pool}}
}

// RecordTopUp claims the external event id. The primary key on
// external_event_id is the exactly-once guarantee: a replayed id fails here
// and the surrounding transaction credits nothing.
func (r *TopUpRepository) RecordTopUp(ctx context.Context, t domain.TopUp) error {
	const stmt = `
INSERT INTO topup_events (external_event_id, user_id, amount, credited_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, t.ExternalEventID, t.UserID, t.Amount, t.CreditedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTopUp
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("record topup: %w", err)
	}
	return nil
}

func (r *TopUpRepository) CreditUser(ctx context.Context, t domain.TopUp) error {
	return r.addAvailable(ctx, t.UserID, t.Amount, false)
}

func (r *TopUpRepository) EnqueueEvent(ctx context.Context, ev domain.OutboxEvent) error {
	return r.enqueueEvent(ctx, ev)
}
