package app

import (
	"context"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/clock"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PurchaseRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
	GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error)
	ReserveUnits(ctx context.Context, productID, buyerID uuid.UUID, quantity int) ([]domain.InventoryUnit, error)
	DebitBuyer(ctx context.Context, buyerID uuid.UUID, amount int64) error
	CreditSellerPending(ctx context.Context, sellerID uuid.UUID, amount int64) error
	CreateOrder(ctx context.Context, order domain.Order) error
	CreateHold(ctx context.Context, hold domain.CreditHold) error
	UpdateProductCounters(ctx context.Context, productID uuid.UUID, soldDelta int) error
	EnqueueEvent(ctx context.Context, ev domain.OutboxEvent) error
}

type PurchaseService struct {
	repo         PurchaseRepository
	clock        clock.Clock
	logger       *zap.Logger
	holdDuration time.Duration
}

const defaultHoldDuration = 72 * time.Hour

func NewPurchaseService(repo PurchaseRepository, clk clock.Clock, logger *zap.Logger, opts ...PurchaseServiceOption) *PurchaseService {
	svc := &PurchaseService{
		repo:         repo,
		clock:        clk,
		logger:       logger,
		holdDuration: defaultHoldDuration,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PurchaseServiceOption func(*PurchaseService)

// WithHoldDuration overrides the escrow window for new holds.
func WithHoldDuration(d time.Duration) PurchaseServiceOption {
	return func(s *PurchaseService) {
		if d > 0 {
			s.holdDuration = d
		}
	}
}

type PurchaseInput struct {
	BuyerID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// PurchaseResult pairs the committed order with the units it delivered.
// Unit payloads leave the store here, at checkout, and nowhere else.
type PurchaseResult struct {
	Order domain.Order
	Units []domain.InventoryUnit
}

// Purchase runs the whole checkout as one unit of work: bounded reservation,
// buyer debit, seller pending credit, order, paired hold, product counters
// and outbox events all commit together or not at all. The pre-checks before
// the transaction are advisory; the reservation and the guarded debit inside
// it are authoritative.
func (s *PurchaseService) Purchase(ctx context.Context, in PurchaseInput) (PurchaseResult, error) {
	if in.Quantity < 1 {
		return PurchaseResult{}, domain.ErrInvalidQuantity
	}

	product, err := s.repo.GetProduct(ctx, in.ProductID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if !product.Sellable() {
		return PurchaseResult{}, domain.ErrProductNotSellable
	}
	if product.SellerID == in.BuyerID {
		return PurchaseResult{}, domain.ErrOwnProduct
	}

	buyer, err := s.repo.GetUser(ctx, in.BuyerID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if !buyer.Active {
		return PurchaseResult{}, domain.ErrUserInactive
	}

	total := int64(in.Quantity) * product.UnitPrice
	if buyer.AvailableBalance < total {
		return PurchaseResult{}, domain.ErrInsufficientFunds
	}

	now := s.clock.Now()
	var order domain.Order
	var units []domain.InventoryUnit

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		units, err = s.repo.ReserveUnits(txCtx, in.ProductID, in.BuyerID, in.Quantity)
		if err != nil {
			return err
		}
		if len(units) < in.Quantity {
			// The bounded update is the single source of truth: what it could
			// lock is the true remaining availability, not the pre-check.
			return &domain.InsufficientInventoryError{Remaining: len(units)}
		}
		unitIDs := make([]uuid.UUID, len(units))
		for i, u := range units {
			unitIDs[i] = u.ID
		}

		if err := s.repo.DebitBuyer(txCtx, in.BuyerID, total); err != nil {
			return err
		}
		if err := s.repo.CreditSellerPending(txCtx, product.SellerID, total); err != nil {
			return err
		}

		order = domain.Order{
			ID:          uuid.New(),
			BuyerID:     in.BuyerID,
			SellerID:    product.SellerID,
			ProductID:   in.ProductID,
			UnitIDs:     unitIDs,
			Quantity:    in.Quantity,
			UnitPrice:   product.UnitPrice,
			TotalAmount: total,
			Status:      domain.OrderStatusCompleted,
			CreatedAt:   now,
		}
		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}

		hold := domain.CreditHold{
			ID:        uuid.New(),
			SellerID:  product.SellerID,
			OrderID:   order.ID,
			Amount:    total,
			Status:    domain.HoldStatusPending,
			MatureAt:  now.Add(s.holdDuration),
			Notes:     []string{"created for order " + order.ID.String()},
			CreatedAt: now,
		}
		if err := s.repo.CreateHold(txCtx, hold); err != nil {
			return err
		}

		if err := s.repo.UpdateProductCounters(txCtx, in.ProductID, in.Quantity); err != nil {
			return err
		}

		return s.enqueuePurchaseEvents(txCtx, order, now)
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	s.logger.Info("purchase completed",
		zap.String("order_id", order.ID.String()),
		zap.String("buyer_id", in.BuyerID.String()),
		zap.String("product_id", in.ProductID.String()),
		zap.Int("quantity", in.Quantity),
		zap.Int64("total", total),
	)
	return PurchaseResult{Order: order, Units: units}, nil
}

func (s *PurchaseService) enqueuePurchaseEvents(ctx context.Context, order domain.Order, now time.Time) error {
	created, err := domain.NewOutboxEvent(domain.EventOrderCreated, order.ID, map[string]any{
		"order_id": order.ID,
		"buyer_id": order.BuyerID,
		"total":    order.TotalAmount,
	}, now)
	if err != nil {
		return err
	}
	if err := s.repo.EnqueueEvent(ctx, created); err != nil {
		return err
	}

	sold, err := domain.NewOutboxEvent(domain.EventProductSold, order.ProductID, map[string]any{
		"product_id": order.ProductID,
		"seller_id":  order.SellerID,
		"quantity":   order.Quantity,
	}, now)
	if err != nil {
		return err
	}
	return s.repo.EnqueueEvent(ctx, sold)
}
