package postgres

import (
	"context"
	"fmt"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db carries the pool plus the tx-aware statement helpers shared by every
// repository in this package. Statements issued through it join the
// transaction travelling in ctx, if any.
type db struct {
	pool *pgxpool.Pool
}

func (d db) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, d.pool, fn)
}

func (d db) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return d.pool.Exec(ctx, sql, args...)
}

func (d db) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return d.pool.QueryRow(ctx, sql, args...)
}

func (d db) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return d.pool.Query(ctx, sql, args...)
}

// addAvailable applies a signed delta to available_balance as one atomic
// statement. Unless allowNegative is set, the update predicate refuses to
// take the balance below zero and the call reports ErrInsufficientFunds.
// Refund and penalty paths pass allowNegative: the resulting debt is an
// accepted business outcome.
func (d db) addAvailable(ctx context.Context, userID uuid.UUID, delta int64, allowNegative bool) error {
	stmt := `
UPDATE users
SET available_balance = available_balance + $2, updated_at = NOW()
WHERE id = $1 AND available_balance + $2 >= 0`
	if allowNegative {
		stmt = `
UPDATE users
SET available_balance = available_balance + $2, updated_at = NOW()
WHERE id = $1`
	}

	tag, err := d.exec(ctx, stmt, userID, delta)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("add available balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := d.userExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}

// addPending applies a signed delta to pending_balance. The predicate keeps
// pending_balance non-negative; a zero-row outcome on a decrement means the
// escrowed amount is no longer there, which callers treat as a conflict.
func (d db) addPending(ctx context.Context, userID uuid.UUID, delta int64) error {
	const stmt = `
UPDATE users
SET pending_balance = pending_balance + $2, updated_at = NOW()
WHERE id = $1 AND pending_balance + $2 >= 0`

	tag, err := d.exec(ctx, stmt, userID, delta)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("add pending balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := d.userExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}
		return domain.ErrHoldNotPending
	}
	return nil
}

func (d db) userExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	if err := d.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

func (d db) getUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	const query = `
SELECT id, username, role, active, ban_until, available_balance, pending_balance, created_at
FROM users
WHERE id = $1`

	var u domain.User
	err := d.queryRow(ctx, query, userID).
		Scan(&u.ID, &u.Username, &u.Role, &u.Active, &u.BanUntil, &u.AvailableBalance, &u.PendingBalance, &u.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.User{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// enqueueEvent inserts a notification into the outbox inside the current
// transaction so it becomes visible to the dispatcher only after commit.
func (d db) enqueueEvent(ctx context.Context, ev domain.OutboxEvent) error {
	const stmt = `
INSERT INTO outbox_events (id, event_type, aggregate_id, payload, status, attempts, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := d.exec(ctx, stmt, ev.ID, ev.EventType, ev.AggregateID, ev.Payload, ev.Status, ev.Attempts, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue event %s: %w", ev.EventType, err)
	}
	return nil
}
