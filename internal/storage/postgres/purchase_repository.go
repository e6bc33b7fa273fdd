package postgres

import (
	"context"
	"fmt"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepository struct {
	db
}

func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{db: db{pool: pool}}
}

func (r *PurchaseRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	const query = `
SELECT id, seller_id, name, unit_price, status, sold_count, sold_out, created_at
FROM products
WHERE id = $1`

	var p domain.Product
	err := r.queryRow(ctx, query, productID).
		Scan(&p.ID, &p.SellerID, &p.Name, &p.UnitPrice, &p.Status, &p.SoldCount, &p.SoldOut, &p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *PurchaseRepository) GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return r.getUser(ctx, userID)
}

// ReserveUnits flips up to quantity available units of the product to sold
// with a single buyer reference, in one statement. SKIP LOCKED keeps racing
// buyers from blocking on each other; the returned units are the only
// trustworthy measure of how many were actually reserved, and carry the
// payloads handed to the buyer at checkout.
func (r *PurchaseRepository) ReserveUnits(ctx context.Context, productID, buyerID uuid.UUID, quantity int) ([]domain.InventoryUnit, error) {
	const stmt = `
WITH picked AS (
	SELECT id
	FROM inventory_units
	WHERE product_id = $1 AND status = 'available'
	ORDER BY created_at
	LIMIT $3
	FOR UPDATE SKIP LOCKED
)
UPDATE inventory_units u
SET status = 'sold', buyer_id = $2, sold_at = NOW()
FROM picked
WHERE u.id = picked.id
RETURNING u.id, u.product_id, u.payload, u.status, u.buyer_id, u.sold_at, u.created_at`

	rows, err := r.query(ctx, stmt, productID, buyerID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("reserve units: %w", err)
	}
	defer rows.Close()

	var units []domain.InventoryUnit
	for rows.Next() {
		var u domain.InventoryUnit
		if err := rows.Scan(&u.ID, &u.ProductID, &u.Payload, &u.Status, &u.BuyerID, &u.SoldAt, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reserved unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reserve units: %w", err)
	}
	return units, nil
}

func (r *PurchaseRepository) DebitBuyer(ctx context.Context, buyerID uuid.UUID, amount int64) error {
	return r.addAvailable(ctx, buyerID, -amount, false)
}

func (r *PurchaseRepository) CreditSellerPending(ctx context.Context, sellerID uuid.UUID, amount int64) error {
	return r.addPending(ctx, sellerID, amount)
}

func (r *PurchaseRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, buyer_id, seller_id, product_id, quantity, unit_price, total_amount, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.BuyerID,
		order.SellerID,
		order.ProductID,
		order.Quantity,
		order.UnitPrice,
		order.TotalAmount,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	for _, unitID := range order.UnitIDs {
		if _, err := r.exec(ctx,
			`INSERT INTO order_units (order_id, unit_id) VALUES ($1, $2)`,
			order.ID, unitID,
		); err != nil {
			return fmt.Errorf("create order unit: %w", err)
		}
	}
	return nil
}

func (r *PurchaseRepository) CreateHold(ctx context.Context, hold domain.CreditHold) error {
	const stmt = `
INSERT INTO credit_holds (id, seller_id, order_id, amount, status, mature_at, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		hold.ID,
		hold.SellerID,
		hold.OrderID,
		hold.Amount,
		hold.Status,
		hold.MatureAt,
		hold.Notes,
		hold.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

// UpdateProductCounters bumps sold_count and refreshes the sold_out flag
// once the reservation in the same transaction has claimed its units.
func (r *PurchaseRepository) UpdateProductCounters(ctx context.Context, productID uuid.UUID, soldDelta int) error {
	const stmt = `
UPDATE products
SET sold_count = sold_count + $2,
    sold_out = NOT EXISTS (
	SELECT 1 FROM inventory_units WHERE product_id = $1 AND status = 'available'
    )
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, soldDelta)
	if err != nil {
		return fmt.Errorf("update product counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *PurchaseRepository) EnqueueEvent(ctx context.Context, ev domain.OutboxEvent) error {
	return r.enqueueEvent(ctx, ev)
}
