package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OutboxRepository struct {
	db
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{db: db{pool: pool}}
}

// ClaimPending locks up to limit deliverable events for this dispatcher
// cycle. SKIP LOCKED lets several dispatcher processes drain the outbox
// without handing the same event to two of them; the claim only holds for
// the duration of the surrounding transaction.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	const query = `
SELECT id, event_type, aggregate_id, payload, status, attempts, last_error, created_at, published_at
FROM outbox_events
WHERE status = 'pending'
ORDER BY created_at
LIMIT $1
FOR UPDATE SKIP LOCKED`

	rows, err := r.query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("claim pending events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var ev domain.OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.AggregateID, &ev.Payload, &ev.Status, &ev.Attempts, &ev.LastError, &ev.CreatedAt, &ev.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID uuid.UUID, now time.Time) error {
	const stmt = `
UPDATE outbox_events
SET status = 'published', published_at = $2, attempts = attempts + 1, last_error = ''
WHERE id = $1`

	if _, err := r.exec(ctx, stmt, eventID, now); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure. Events under the attempt cap stay
// pending for the next cycle; exhausted ones park as failed for manual
// replay.
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID uuid.UUID, cause string, maxAttempts int) error {
	const stmt = `
UPDATE outbox_events
SET attempts = attempts + 1,
    last_error = $2,
    status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END
WHERE id = $1`

	if _, err := r.exec(ctx, stmt, eventID, cause, maxAttempts); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}
