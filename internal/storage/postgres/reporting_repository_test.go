package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/app"
	"github.com/Hoang7604119/mmostore-sub002/internal/clock"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/Hoang7604119/mmostore-sub002/internal/storage/postgres"
	"github.com/Hoang7604119/mmostore-sub002/internal/testutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestReportingRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	holdRepo := postgres.NewHoldRepository(pool)
	repo := postgres.NewReportingRepository(pool)

	sellerID := testutil.InsertUser(t, ctx, pool, "seller", 0, 0)
	buyerID := testutil.InsertUser(t, ctx, pool, "buyer", 50_000, 0)
	productID := testutil.InsertProduct(t, ctx, pool, sellerID, "keys", 10_000, 3)

	purchases := app.NewPurchaseService(purchaseRepo, clock.NewFixed(now), zap.NewNop())

	// two orders: the first matures and releases, the second stays pending
	first, err := purchases.Purchase(ctx, app.PurchaseInput{BuyerID: buyerID, ProductID: productID, Quantity: 2})
	if err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	holds := app.NewHoldService(holdRepo, clock.NewFixed(now), zap.NewNop())
	var firstHoldID uuid.UUID
	if err := pool.QueryRow(ctx, `SELECT id FROM credit_holds WHERE order_id = $1`, first.Order.ID).Scan(&firstHoldID); err != nil {
		t.Fatalf("query hold: %v", err)
	}
	if _, err := holds.ResolveHold(ctx, app.ResolveHoldInput{
		HoldID: firstHoldID,
		Action: domain.HoldActionRelease,
		Actor:  admin,
		Note:   "matured",
	}); err != nil {
		t.Fatalf("release hold: %v", err)
	}

	if _, err := purchases.Purchase(ctx, app.PurchaseInput{BuyerID: buyerID, ProductID: productID, Quantity: 1}); err != nil {
		t.Fatalf("second purchase: %v", err)
	}

	t.Run("orders listed for both sides", func(t *testing.T) {
		buyerOrders, err := repo.ListOrdersByUser(ctx, buyerID)
		if err != nil {
			t.Fatalf("list buyer orders: %v", err)
		}
		if len(buyerOrders) != 2 {
			t.Fatalf("expected 2 buyer orders, got %d", len(buyerOrders))
		}

		sellerOrders, err := repo.ListOrdersByUser(ctx, sellerID)
		if err != nil {
			t.Fatalf("list seller orders: %v", err)
		}
		if len(sellerOrders) != 2 {
			t.Fatalf("expected 2 seller orders, got %d", len(sellerOrders))
		}
	})

	t.Run("seller stats aggregate the settlement position", func(t *testing.T) {
		stats, err := repo.SellerStats(ctx, sellerID)
		if err != nil {
			t.Fatalf("seller stats: %v", err)
		}
		if stats.SoldUnits != 3 {
			t.Fatalf("expected 3 sold units, got %d", stats.SoldUnits)
		}
		if stats.PendingTotal != 10_000 {
			t.Fatalf("expected pending 10000, got %d", stats.PendingTotal)
		}
		if stats.ReleasedTotal != 20_000 {
			t.Fatalf("expected released 20000, got %d", stats.ReleasedTotal)
		}
		if stats.Debt != 0 {
			t.Fatalf("expected no debt, got %d", stats.Debt)
		}
	})

	t.Run("balances through the reporting service", func(t *testing.T) {
		svc := app.NewReportingService(repo)
		bal, err := svc.GetBalance(ctx, sellerID, domain.Actor{ID: sellerID, Role: domain.RoleUser})
		if err != nil {
			t.Fatalf("get balance: %v", err)
		}
		if bal.Available != 20_000 || bal.Pending != 10_000 {
			t.Fatalf("unexpected balance %+v", bal)
		}
	})
}
