package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/clock"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/Hoang7604119/mmostore-sub002/internal/outbox"
	"github.com/Hoang7604119/mmostore-sub002/internal/storage/postgres"
	"github.com/Hoang7604119/mmostore-sub002/internal/testutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	delivered []domain.OutboxEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev domain.OutboxEvent) error {
	n.delivered = append(n.delivered, ev)
	return nil
}

func TestOutboxRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	repo := postgres.NewOutboxRepository(pool)

	enqueue := func(t *testing.T, eventType string) domain.OutboxEvent {
		t.Helper()
		ev, err := domain.NewOutboxEvent(eventType, uuid.New(), map[string]any{"k": "v"}, now)
		if err != nil {
			t.Fatalf("build event: %v", err)
		}
		if _, err := pool.Exec(ctx, `
INSERT INTO outbox_events (id, event_type, aggregate_id, payload, status, attempts, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ev.ID, ev.EventType, ev.AggregateID, ev.Payload, ev.Status, ev.Attempts, ev.CreatedAt,
		); err != nil {
			t.Fatalf("enqueue event: %v", err)
		}
		return ev
	}

	t.Run("dispatcher drains enqueued events", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		enqueue(t, domain.EventOrderCreated)
		enqueue(t, domain.EventHoldReleased)

		notifier := &recordingNotifier{}
		d := outbox.NewDispatcher(repo, notifier, clock.NewFixed(now), zap.NewNop())

		published, err := d.Dispatch(ctx)
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if published != 2 {
			t.Fatalf("expected 2 published, got %d", published)
		}
		if len(notifier.delivered) != 2 {
			t.Fatalf("expected 2 deliveries, got %d", len(notifier.delivered))
		}

		var pending int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events WHERE status = 'pending'`).Scan(&pending); err != nil {
			t.Fatalf("count pending: %v", err)
		}
		if pending != 0 {
			t.Fatalf("expected outbox drained, got %d pending", pending)
		}

		published, err = d.Dispatch(ctx)
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if published != 0 {
			t.Fatalf("expected nothing left, got %d", published)
		}
	})

	t.Run("claim respects the batch limit", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		for i := 0; i < 3; i++ {
			enqueue(t, domain.EventTopUpCredited)
		}

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			events, err := repo.ClaimPending(txCtx, 2)
			if err != nil {
				return err
			}
			if len(events) != 2 {
				t.Fatalf("expected 2 claimed, got %d", len(events))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("claim: %v", err)
		}
	})

	t.Run("exhausted attempts park the event as failed", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		ev := enqueue(t, domain.EventDisputeResolved)

		for i := 0; i < 2; i++ {
			if err := repo.MarkFailed(ctx, ev.ID, "broker unavailable", 2); err != nil {
				t.Fatalf("mark failed: %v", err)
			}
		}

		var status string
		var attempts int
		if err := pool.QueryRow(ctx,
			`SELECT status, attempts FROM outbox_events WHERE id = $1`, ev.ID,
		).Scan(&status, &attempts); err != nil {
			t.Fatalf("query event: %v", err)
		}
		if status != "failed" || attempts != 2 {
			t.Fatalf("expected failed after 2 attempts, got %s/%d", status, attempts)
		}
	})
}
