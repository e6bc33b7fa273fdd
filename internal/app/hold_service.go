package app

import (
	"context"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/clock"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetHold(ctx context.Context, holdID uuid.UUID) (domain.CreditHold, error)
	TransitionHold(ctx context.Context, holdID uuid.UUID, to domain.HoldStatus, note string, now time.Time) (bool, error)
	CreditSellerAvailable(ctx context.Context, sellerID uuid.UUID, amount int64) error
	DebitSellerPending(ctx context.Context, sellerID uuid.UUID, amount int64) error
	ListDueHolds(ctx context.Context, now time.Time, limit int) ([]domain.CreditHold, error)
	ListHoldsBySeller(ctx context.Context, sellerID uuid.UUID, status *domain.HoldStatus) ([]domain.CreditHold, error)
	EnqueueEvent(ctx context.Context, ev domain.OutboxEvent) error
}

type HoldService struct {
	repo   HoldRepository
	clock  clock.Clock
	logger *zap.Logger
}

func NewHoldService(repo HoldRepository, clk clock.Clock, logger *zap.Logger) *HoldService {
	return &HoldService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

type ResolveHoldInput struct {
	HoldID uuid.UUID
	Action domain.HoldAction
	Actor  domain.Actor
	Note   string
}

// ResolveHold releases or cancels a pending hold. Release swaps the amount
// from the seller's pending balance to available; cancel removes it from
// pending without crediting anything. Both paths race safely against each
// other: the compare-and-set in TransitionHold picks exactly one winner, and
// the loser sees ErrHoldNotPending with balances untouched.
func (s *HoldService) ResolveHold(ctx context.Context, in ResolveHoldInput) (domain.CreditHold, error) {
	if !in.Actor.Privileged() {
		return domain.CreditHold{}, domain.ErrForbidden
	}
	if in.Action != domain.HoldActionRelease && in.Action != domain.HoldActionCancel {
		return domain.CreditHold{}, domain.ErrInvalidTransition
	}
	if in.Note == "" {
		return domain.CreditHold{}, domain.ErrNoteRequired
	}

	target := domain.HoldStatusReleased
	event := domain.EventHoldReleased
	if in.Action == domain.HoldActionCancel {
		target = domain.HoldStatusCancelled
		event = domain.EventHoldCancelled
	}

	now := s.clock.Now()
	var result domain.CreditHold

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHold(txCtx, in.HoldID)
		if err != nil {
			return err
		}
		if err := domain.ValidateHoldTransition(hold.Status, target); err != nil {
			return domain.ErrHoldNotPending
		}

		ok, err := s.repo.TransitionHold(txCtx, in.HoldID, target, in.Note, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrHoldNotPending
		}

		if err := s.repo.DebitSellerPending(txCtx, hold.SellerID, hold.Amount); err != nil {
			return err
		}
		if target == domain.HoldStatusReleased {
			if err := s.repo.CreditSellerAvailable(txCtx, hold.SellerID, hold.Amount); err != nil {
				return err
			}
		}

		ev, err := domain.NewOutboxEvent(event, hold.ID, map[string]any{
			"hold_id":   hold.ID,
			"seller_id": hold.SellerID,
			"amount":    hold.Amount,
		}, now)
		if err != nil {
			return err
		}
		if err := s.repo.EnqueueEvent(txCtx, ev); err != nil {
			return err
		}

		result = hold
		result.Status = target
		result.ResolvedAt = &now
		result.Notes = append(result.Notes, in.Note)
		return nil
	})
	if err != nil {
		return domain.CreditHold{}, err
	}

	s.logger.Info("hold resolved",
		zap.String("hold_id", in.HoldID.String()),
		zap.String("action", string(in.Action)),
		zap.String("actor_id", in.Actor.ID.String()),
	)
	return result, nil
}

// ReleaseDue releases pending holds whose maturity has elapsed, one
// transaction per hold so a single bad row cannot wedge the sweep. Holds
// that an admin cancelled in the meantime lose the CAS and are skipped.
func (s *HoldService) ReleaseDue(ctx context.Context, limit int) (int, error) {
	now := s.clock.Now()
	due, err := s.repo.ListDueHolds(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, hold := range due {
		if !hold.Mature(now) {
			continue
		}
		_, err := s.ResolveHold(ctx, ResolveHoldInput{
			HoldID: hold.ID,
			Action: domain.HoldActionRelease,
			Actor:  domain.Actor{Role: domain.RoleSystem},
			Note:   "released at maturity",
		})
		switch err {
		case nil:
			released++
		case domain.ErrHoldNotPending:
			// lost the race to an admin resolution
		default:
			s.logger.Warn("maturity release failed",
				zap.String("hold_id", hold.ID.String()),
				zap.Error(err),
			)
		}
	}
	return released, nil
}

// ListBySeller is a read-only view; it never opens a transaction.
func (s *HoldService) ListBySeller(ctx context.Context, sellerID uuid.UUID, status *domain.HoldStatus) ([]domain.CreditHold, error) {
	return s.repo.ListHoldsBySeller(ctx, sellerID, status)
}
