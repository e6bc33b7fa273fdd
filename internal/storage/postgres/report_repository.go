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

type ReportRepository struct {
	db
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db{pool: pool}}
}

const reportColumns = `
id, reporter_id, reported_user_id, order_id, reason, status,
refund_amount, refund_processed, penalty_type, penalty_amount,
resolved_by, resolution_note, resolved_at, created_at`

func (r *ReportRepository) scanReport(row pgx.Row) (domain.Report, error) {
	var rep domain.Report
	err := row.Scan(
		&rep.ID, &rep.ReporterID, &rep.ReportedUserID, &rep.OrderID, &rep.Reason, &rep.Status,
		&rep.RefundAmount, &rep.RefundProcessed, &rep.PenaltyType, &rep.PenaltyAmount,
		&rep.ResolvedBy, &rep.ResolutionNote, &rep.ResolvedAt, &rep.CreatedAt,
	)
	return rep, err
}

func (r *ReportRepository) GetReport(ctx context.Context, reportID uuid.UUID) (domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	rep, err := r.scanReport(r.queryRow(ctx, query, reportID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Report{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Report{}, domain.ErrReportNotFound
		}
		return domain.Report{}, fmt.Errorf("get report: %w", err)
	}
	return rep, nil
}

func (r *ReportRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	const query = `
SELECT id, buyer_id, seller_id, product_id, quantity, unit_price, total_amount, status, created_at
FROM orders
WHERE id = $1`

	var o domain.Order
	err := r.queryRow(ctx, query, orderID).
		Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID, &o.Quantity, &o.UnitPrice, &o.TotalAmount, &o.Status, &o.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// HasOpenReport reports whether the order already has a non-terminal report.
func (r *ReportRepository) HasOpenReport(ctx context.Context, orderID uuid.UUID) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM reports
	WHERE order_id = $1 AND status IN ('pending', 'investigating')
)`

	var exists bool
	if err := r.queryRow(ctx, query, orderID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check open report: %w", err)
	}
	return exists, nil
}

func (r *ReportRepository) CreateReport(ctx context.Context, rep domain.Report) error {
	const stmt = `
INSERT INTO reports (id, reporter_id, reported_user_id, order_id, reason, status, penalty_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		rep.ID, rep.ReporterID, rep.ReportedUserID, rep.OrderID,
		rep.Reason, rep.Status, rep.PenaltyType, rep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// MarkInvestigating moves a pending report to investigating. CAS on the
// current status; false means another resolver got there first.
func (r *ReportRepository) MarkInvestigating(ctx context.Context, reportID uuid.UUID) (bool, error) {
	const stmt = `UPDATE reports SET status = 'investigating' WHERE id = $1 AND status = 'pending'`

	tag, err := r.exec(ctx, stmt, reportID)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("mark investigating: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FinalizeReport writes the terminal status plus resolution metadata. CAS on
// the non-terminal states makes each report resolvable exactly once; false
// means the report was already terminal.
func (r *ReportRepository) FinalizeReport(ctx context.Context, rep domain.Report, now time.Time) (bool, error) {
	const stmt = `
UPDATE reports
SET status = $2, refund_amount = $3, refund_processed = $4,
    penalty_type = $5, penalty_amount = $6,
    resolved_by = $7, resolution_note = $8, resolved_at = $9
WHERE id = $1 AND status IN ('pending', 'investigating')`

	tag, err := r.exec(ctx, stmt,
		rep.ID, rep.Status, rep.RefundAmount, rep.RefundProcessed,
		rep.PenaltyType, rep.PenaltyAmount,
		rep.ResolvedBy, rep.ResolutionNote, now,
	)
	if err != nil {
		return false, fmt.Errorf("finalize report: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReportRepository) DebitSellerAvailable(ctx context.Context, sellerID uuid.UUID, amount int64) error {
	// Refunds and penalties may drive the seller negative; the sale proceeds
	// can already be matured and withdrawn.
	return r.addAvailable(ctx, sellerID, -amount, true)
}

func (r *ReportRepository) CreditBuyerAvailable(ctx context.Context, buyerID uuid.UUID, amount int64) error {
	return r.addAvailable(ctx, buyerID, amount, false)
}

func (r *ReportRepository) DebitSellerPending(ctx context.Context, sellerID uuid.UUID, amount int64) error {
	return r.addPending(ctx, sellerID, -amount)
}

// MarkOrderRefunded flips the order's refunded marker. Amounts and line
// items stay untouched.
func (r *ReportRepository) MarkOrderRefunded(ctx context.Context, orderID uuid.UUID) (bool, error) {
	const stmt = `UPDATE orders SET status = 'refunded' WHERE id = $1 AND status = 'completed'`

	tag, err := r.exec(ctx, stmt, orderID)
	if err != nil {
		return false, fmt.Errorf("mark order refunded: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CancelHoldForOrder cancels the order's hold if it is still pending and
// returns the escrowed amount so the caller can remove it from the seller's
// pending balance. An already-released hold leaves the refund as plain debt.
func (r *ReportRepository) CancelHoldForOrder(ctx context.Context, orderID uuid.UUID, note string, now time.Time) (*domain.CreditHold, error) {
	const stmt = `
UPDATE credit_holds
SET status = 'cancelled', resolved_at = $2, notes = array_append(notes, $3)
WHERE order_id = $1 AND status = 'pending'
RETURNING id, seller_id, order_id, amount, status, mature_at, resolved_at, notes, created_at`

	var h domain.CreditHold
	err := r.queryRow(ctx, stmt, orderID, now, note).
		Scan(&h.ID, &h.SellerID, &h.OrderID, &h.Amount, &h.Status, &h.MatureAt, &h.ResolvedAt, &h.Notes, &h.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("cancel hold for order: %w", err)
	}
	return &h, nil
}

// ApplyBan deactivates the seller until the given time. The permanent ban
// passes the far-future sentinel.
func (r *ReportRepository) ApplyBan(ctx context.Context, sellerID uuid.UUID, until time.Time) error {
	const stmt = `UPDATE users SET active = FALSE, ban_until = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.exec(ctx, stmt, sellerID, until)
	if err != nil {
		return fmt.Errorf("apply ban: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *ReportRepository) ListReports(ctx context.Context, status *domain.ReportStatus) ([]domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY created_at DESC`
	args := []any{}
	if status != nil {
		query = `SELECT ` + reportColumns + ` FROM reports WHERE status = $1 ORDER BY created_at DESC`
		args = append(args, *status)
	}

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *ReportRepository) EnqueueEvent(ctx context.Context, ev domain.OutboxEvent) error {
	return r.enqueueEvent(ctx, ev)
}
