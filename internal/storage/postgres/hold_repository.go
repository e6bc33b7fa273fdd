package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldRepository struct {
	db
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{db: db{pool: pool}}
}

func (r *HoldRepository) GetHold(ctx context.Context, holdID uuid.UUID) (domain.CreditHold, error) {
	const query = `
SELECT id, seller_id, order_id, amount, status, mature_at, resolved_at, notes, created_at
FROM credit_holds
WHERE id = $1`

	var h domain.CreditHold
	err := r.queryRow(ctx, query, holdID).
		Scan(&h.ID, &h.SellerID, &h.OrderID, &h.Amount, &h.Status, &h.MatureAt, &h.ResolvedAt, &h.Notes, &h.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.CreditHold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.CreditHold{}, domain.ErrHoldNotFound
		}
		return domain.CreditHold{}, fmt.Errorf("get hold: %w", err)
	}
	return h, nil
}

// TransitionHold is the compare-and-set guarding every hold resolution: the
// row only moves when still pending, so concurrent release and cancel agree
// on a single winner. The note is appended to existing history, never
// overwriting it. Returns false when the hold was no longer pending.
func (r *HoldRepository) TransitionHold(ctx context.Context, holdID uuid.UUID, to domain.HoldStatus, note string, now time.Time) (bool, error) {
	const stmt = `
UPDATE credit_holds
SET status = $2, resolved_at = $3, notes = array_append(notes, $4)
WHERE id = $1 AND status = 'pending'`

	tag, err := r.exec(ctx, stmt, holdID, to, now, note)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("transition hold: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *HoldRepository) CreditSellerAvailable(ctx context.Context, sellerID uuid.UUID, amount int64) error {
	return r.addAvailable(ctx, sellerID, amount, false)
}

func (r *HoldRepository) DebitSellerPending(ctx context.Context, sellerID uuid.UUID, amount int64) error {
	return r.addPending(ctx, sellerID, -amount)
}

// ListDueHolds returns pending holds whose maturity has elapsed, oldest
// first. The sweep resolves each one through the same CAS as the admin path,
// so a stale row here is harmless.
func (r *HoldRepository) ListDueHolds(ctx context.Context, now time.Time, limit int) ([]domain.CreditHold, error) {
	const query = `
SELECT id, seller_id, order_id, amount, status, mature_at, resolved_at, notes, created_at
FROM credit_holds
WHERE status = 'pending' AND mature_at <= $1
ORDER BY mature_at
LIMIT $2`

	rows, err := r.query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due holds: %w", err)
	}
	defer rows.Close()

	var holds []domain.CreditHold
	for rows.Next() {
		var h domain.CreditHold
		if err := rows.Scan(&h.ID, &h.SellerID, &h.OrderID, &h.Amount, &h.Status, &h.MatureAt, &h.ResolvedAt, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan due hold: %w", err)
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

func (r *HoldRepository) ListHoldsBySeller(ctx context.Context, sellerID uuid.UUID, status *domain.HoldStatus) ([]domain.CreditHold, error) {
	query := `
SELECT id, seller_id, order_id, amount, status, mature_at, resolved_at, notes, created_at
FROM credit_holds
WHERE seller_id = $1
ORDER BY created_at DESC`
	args := []any{sellerID}
	if status != nil {
		query = `
SELECT id, seller_id, order_id, amount, status, mature_at, resolved_at, notes, created_at
FROM credit_holds
WHERE seller_id = $1 AND status = $2
ORDER BY created_at DESC`
		args = append(args, *status)
	}

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list holds: %w", err)
	}
	defer rows.Close()

	var holds []domain.CreditHold
	for rows.Next() {
		var h domain.CreditHold
		if err := rows.Scan(&h.ID, &h.SellerID, &h.OrderID, &h.Amount, &h.Status, &h.MatureAt, &h.ResolvedAt, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

func (r *HoldRepository) EnqueueEvent(ctx context.Context, ev domain.OutboxEvent) error {
	return r.enqueueEvent(ctx, ev)
}
