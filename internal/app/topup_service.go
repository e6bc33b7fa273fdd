package app

import (
	"context"

	"github.com/Hoang7604119/mmostore-sub002/internal/clock"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TopUpRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	RecordTopUp(ctx context.Context, t domain.TopUp) error
	CreditUser(ctx context.Context, t domain.TopUp) error
	EnqueueEvent(ctx context.Context, ev domain.OutboxEvent) error
}

// TopUpService ingests already-signature-verified payment gateway events.
type TopUpService struct {
	repo   TopUpRepository
	clock  clock.Clock
	logger *zap.Logger
}

func NewTopUpService(repo TopUpRepository, clk clock.Clock, logger *zap.Logger) *TopUpService {
	return &TopUpService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

type CreditInput struct {
	ExternalEventID string
	UserID          uuid.UUID
	Amount          int64
}

// Credit applies one gateway event to the user's available balance.
// Recording the external event id and crediting happen in the same
// transaction, so a replayed id credits nothing and returns
// ErrDuplicateTopUp.
func (s *TopUpService) Credit(ctx context.Context, in CreditInput) (domain.TopUp, error) {
	if in.ExternalEventID == "" {
		return domain.TopUp{}, domain.ErrEventIDRequired
	}
	if in.Amount <= 0 {
		return domain.TopUp{}, domain.ErrInvalidAmount
	}

	topup := domain.TopUp{
		ExternalEventID: in.ExternalEventID,
		UserID:          in.UserID,
		Amount:          in.Amount,
		CreditedAt:      s.clock.Now(),
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.RecordTopUp(txCtx, topup); err != nil {
			return err
		}
		if err := s.repo.CreditUser(txCtx, topup); err != nil {
			return err
		}

		ev, err := domain.NewOutboxEvent(domain.EventTopUpCredited, topup.UserID, map[string]any{
			"external_event_id": topup.ExternalEventID,
			"user_id":           topup.UserID,
			"amount":            topup.Amount,
		}, topup.CreditedAt)
		if err != nil {
			return err
		}
		return s.repo.EnqueueEvent(txCtx, ev)
	})
	if err != nil {
		return domain.TopUp{}, err
	}

	s.logger.Info("topup credited",
		zap.String("external_event_id", in.ExternalEventID),
		zap.String("user_id", in.UserID.String()),
		zap.Int64("amount", in.Amount),
	)
	return topup, nil
}
