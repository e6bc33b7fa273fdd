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

func TestHoldRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	holdRepo := postgres.NewHoldRepository(pool)
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	// buy one unit so a pending hold exists, and return its id
	seedHold := func(t *testing.T, holdDuration time.Duration) (uuid.UUID, uuid.UUID) {
		t.Helper()
		testutil.TruncateAll(t, ctx, pool)
		sellerID := testutil.InsertUser(t, ctx, pool, "seller", 0, 0)
		buyerID := testutil.InsertUser(t, ctx, pool, "buyer", 30_000, 0)
		productID := testutil.InsertProduct(t, ctx, pool, sellerID, "keys", 30_000, 1)

		svc := app.NewPurchaseService(purchaseRepo, clock.NewFixed(now), zap.NewNop(), app.WithHoldDuration(holdDuration))
		res, err := svc.Purchase(ctx, app.PurchaseInput{
			BuyerID:   buyerID,
			ProductID: productID,
			Quantity:  1,
		})
		if err != nil {
			t.Fatalf("seed purchase: %v", err)
		}

		var holdID uuid.UUID
		if err := pool.QueryRow(ctx, `SELECT id FROM credit_holds WHERE order_id = $1`, res.Order.ID).Scan(&holdID); err != nil {
			t.Fatalf("query hold id: %v", err)
		}
		return holdID, sellerID
	}

	t.Run("transition hold wins at most once", func(t *testing.T) {
		holdID, _ := seedHold(t, 72*time.Hour)

		ok, err := holdRepo.TransitionHold(ctx, holdID, domain.HoldStatusReleased, "first", now)
		if err != nil {
			t.Fatalf("first transition: %v", err)
		}
		if !ok {
			t.Fatal("expected first transition to win")
		}

		ok, err = holdRepo.TransitionHold(ctx, holdID, domain.HoldStatusCancelled, "second", now)
		if err != nil {
			t.Fatalf("second transition: %v", err)
		}
		if ok {
			t.Fatal("expected second transition to lose")
		}

		hold, err := holdRepo.GetHold(ctx, holdID)
		if err != nil {
			t.Fatalf("get hold: %v", err)
		}
		if hold.Status != domain.HoldStatusReleased {
			t.Fatalf("expected released, got %s", hold.Status)
		}
		if len(hold.Notes) != 2 || hold.Notes[1] != "first" {
			t.Fatalf("expected appended note, got %v", hold.Notes)
		}
	})

	t.Run("release moves pending to available", func(t *testing.T) {
		holdID, sellerID := seedHold(t, 72*time.Hour)

		svc := app.NewHoldService(holdRepo, clock.NewFixed(now), zap.NewNop())
		hold, err := svc.ResolveHold(ctx, app.ResolveHoldInput{
			HoldID: holdID,
			Action: domain.HoldActionRelease,
			Actor:  admin,
			Note:   "manual release",
		})
		if err != nil {
			t.Fatalf("resolve hold: %v", err)
		}
		if hold.Status != domain.HoldStatusReleased {
			t.Fatalf("expected released, got %s", hold.Status)
		}

		assertBalance(t, ctx, pool, sellerID, 30_000, 0)

		// a replayed resolution is rejected and changes nothing
		_, err = svc.ResolveHold(ctx, app.ResolveHoldInput{
			HoldID: holdID,
			Action: domain.HoldActionRelease,
			Actor:  admin,
			Note:   "replay",
		})
		if err != domain.ErrHoldNotPending {
			t.Fatalf("expected ErrHoldNotPending, got %v", err)
		}
		assertBalance(t, ctx, pool, sellerID, 30_000, 0)
	})

	t.Run("cancel forfeits the pending amount", func(t *testing.T) {
		holdID, sellerID := seedHold(t, 72*time.Hour)

		svc := app.NewHoldService(holdRepo, clock.NewFixed(now), zap.NewNop())
		_, err := svc.ResolveHold(ctx, app.ResolveHoldInput{
			HoldID: holdID,
			Action: domain.HoldActionCancel,
			Actor:  admin,
			Note:   "dispute upheld",
		})
		if err != nil {
			t.Fatalf("resolve hold: %v", err)
		}

		assertBalance(t, ctx, pool, sellerID, 0, 0)
	})

	t.Run("maturity sweep releases only due holds", func(t *testing.T) {
		holdID, sellerID := seedHold(t, time.Minute)

		// not yet due
		svc := app.NewHoldService(holdRepo, clock.NewFixed(now), zap.NewNop())
		released, err := svc.ReleaseDue(ctx, 100)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if released != 0 {
			t.Fatalf("expected nothing due, got %d", released)
		}

		// past maturity
		later := app.NewHoldService(holdRepo, clock.NewFixed(now.Add(2*time.Minute)), zap.NewNop())
		released, err = later.ReleaseDue(ctx, 100)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if released != 1 {
			t.Fatalf("expected 1 released, got %d", released)
		}

		hold, err := holdRepo.GetHold(ctx, holdID)
		if err != nil {
			t.Fatalf("get hold: %v", err)
		}
		if hold.Status != domain.HoldStatusReleased {
			t.Fatalf("expected released, got %s", hold.Status)
		}
		assertBalance(t, ctx, pool, sellerID, 30_000, 0)

		// repeat sweep is a no-op
		released, err = later.ReleaseDue(ctx, 100)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if released != 0 {
			t.Fatalf("expected repeat sweep to release nothing, got %d", released)
		}
	})

	t.Run("list holds by seller with status filter", func(t *testing.T) {
		holdID, sellerID := seedHold(t, 72*time.Hour)

		pending := domain.HoldStatusPending
		holds, err := holdRepo.ListHoldsBySeller(ctx, sellerID, &pending)
		if err != nil {
			t.Fatalf("list holds: %v", err)
		}
		if len(holds) != 1 || holds[0].ID != holdID {
			t.Fatalf("expected the pending hold, got %v", holds)
		}

		released := domain.HoldStatusReleased
		holds, err = holdRepo.ListHoldsBySeller(ctx, sellerID, &released)
		if err != nil {
			t.Fatalf("list holds: %v", err)
		}
		if len(holds) != 0 {
			t.Fatalf("expected no released holds, got %d", len(holds))
		}
	})
}
