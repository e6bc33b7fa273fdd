package app

import (
	"context"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
)

type ReportingRepository interface {
	GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	SellerStats(ctx context.Context, sellerID uuid.UUID) (domain.SellerStats, error)
}

// ReportingService serves the read-only surface: balances, order history and
// seller aggregates. None of it opens a transaction.
type ReportingService struct {
	repo ReportingRepository
}

func NewReportingService(repo ReportingRepository) *ReportingService {
	return &ReportingService{repo: repo}
}

type Balance struct {
	UserID    uuid.UUID
	Available int64
	Pending   int64
}

// GetBalance returns a user's own balances. Privileged actors may read
// anyone's.
func (s *ReportingService) GetBalance(ctx context.Context, userID uuid.UUID, actor domain.Actor) (Balance, error) {
	if actor.ID != userID && !actor.Privileged() {
		return Balance{}, domain.ErrForbidden
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{
		UserID:    user.ID,
		Available: user.AvailableBalance,
		Pending:   user.PendingBalance,
	}, nil
}

func (s *ReportingService) ListOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	return s.repo.ListOrdersByUser(ctx, actor.ID)
}

func (s *ReportingService) SellerStats(ctx context.Context, sellerID uuid.UUID, actor domain.Actor) (domain.SellerStats, error) {
	if actor.ID != sellerID && !actor.Privileged() {
		return domain.SellerStats{}, domain.ErrForbidden
	}
	return s.repo.SellerStats(ctx, sellerID)
}
