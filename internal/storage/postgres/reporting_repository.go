package postgres

import (
	"context"
	"fmt"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportingRepository serves the read-only surface. Nothing here opens a
// transaction.
type ReportingRepository struct {
	db
}

func NewReportingRepository(pool *pgxpool.Pool) *ReportingRepository {
	return &ReportingRepository{db: db{pool: pool}}
}

func (r *ReportingRepository) GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return r.getUser(ctx, userID)
}

func (r *ReportingRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	const query = `
SELECT id, buyer_id, seller_id, product_id, quantity, unit_price, total_amount, status, created_at
FROM orders
WHERE buyer_id = $1 OR seller_id = $1
ORDER BY created_at DESC`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID, &o.Quantity, &o.UnitPrice, &o.TotalAmount, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SellerStats aggregates a seller's settlement position in one query.
func (r *ReportingRepository) SellerStats(ctx context.Context, sellerID uuid.UUID) (domain.SellerStats, error) {
	const query = `
SELECT
	COALESCE((SELECT SUM(quantity) FROM orders WHERE seller_id = $1 AND status = 'completed'), 0),
	COALESCE((SELECT SUM(amount) FROM credit_holds WHERE seller_id = $1 AND status = 'pending'), 0),
	COALESCE((SELECT SUM(amount) FROM credit_holds WHERE seller_id = $1 AND status = 'released'), 0),
	COALESCE((SELECT GREATEST(-available_balance, 0) FROM users WHERE id = $1), 0)`

	var s domain.SellerStats
	err := r.queryRow(ctx, query, sellerID).
		Scan(&s.SoldUnits, &s.PendingTotal, &s.ReleasedTotal, &s.Debt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.SellerStats{}, domain.ErrInvalidID
		}
		return domain.SellerStats{}, fmt.Errorf("seller stats: %w", err)
	}
	return s, nil
}
