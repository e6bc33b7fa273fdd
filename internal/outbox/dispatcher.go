package outbox

import (
	"context"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/clock"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ClaimPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, eventID uuid.UUID, now time.Time) error
	MarkFailed(ctx context.Context, eventID uuid.UUID, cause string, maxAttempts int) error
}

// Notifier delivers one event to the outside world. Implementations are
// fire-and-forget from the financial core's point of view: a returned error
// only delays redelivery, it never reaches the caller that produced the
// event.
type Notifier interface {
	Notify(ctx context.Context, ev domain.OutboxEvent) error
}

// Dispatcher drains the outbox after financial transactions commit. Multiple
// dispatcher processes can run at once; the SKIP LOCKED claim hands each
// event to exactly one of them per cycle.
type Dispatcher struct {
	repo        Repository
	notifier    Notifier
	clock       clock.Clock
	logger      *zap.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

const (
	defaultInterval    = 2 * time.Second
	defaultBatchSize   = 50
	defaultMaxAttempts = 10
)

func NewDispatcher(repo Repository, notifier Notifier, clk clock.Clock, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		repo:        repo,
		notifier:    notifier,
		clock:       clk,
		logger:      logger,
		interval:    defaultInterval,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type DispatcherOption func(*Dispatcher)

func WithInterval(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.interval = d
		}
	}
}

func WithBatchSize(n int) DispatcherOption {
	return func(disp *Dispatcher) {
		if n > 0 {
			disp.batchSize = n
		}
	}
}

func WithMaxAttempts(n int) DispatcherOption {
	return func(disp *Dispatcher) {
		if n > 0 {
			disp.maxAttempts = n
		}
	}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.Dispatch(ctx); err != nil {
				d.logger.Warn("outbox dispatch cycle failed", zap.Error(err))
			}
		}
	}
}

// Dispatch runs one delivery cycle and reports how many events were
// published. Delivery failures are recorded on the event row and logged;
// they never abort the cycle.
func (d *Dispatcher) Dispatch(ctx context.Context) (int, error) {
	published := 0

	err := d.repo.WithTx(ctx, func(txCtx context.Context) error {
		events, err := d.repo.ClaimPending(txCtx, d.batchSize)
		if err != nil {
			return err
		}

		for _, ev := range events {
			if err := d.notifier.Notify(ctx, ev); err != nil {
				d.logger.Warn("notification delivery failed",
					zap.String("event_id", ev.ID.String()),
					zap.String("event_type", ev.EventType),
					zap.Int("attempts", ev.Attempts+1),
					zap.Error(err),
				)
				if err := d.repo.MarkFailed(txCtx, ev.ID, err.Error(), d.maxAttempts); err != nil {
					return err
				}
				continue
			}
			if err := d.repo.MarkPublished(txCtx, ev.ID, d.clock.Now()); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}
