package app

import (
	"context"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/clock"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReportRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetReport(ctx context.Context, reportID uuid.UUID) (domain.Report, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	HasOpenReport(ctx context.Context, orderID uuid.UUID) (bool, error)
	CreateReport(ctx context.Context, rep domain.Report) error
	MarkInvestigating(ctx context.Context, reportID uuid.UUID) (bool, error)
	FinalizeReport(ctx context.Context, rep domain.Report, now time.Time) (bool, error)
	DebitSellerAvailable(ctx context.Context, sellerID uuid.UUID, amount int64) error
	CreditBuyerAvailable(ctx context.Context, buyerID uuid.UUID, amount int64) error
	MarkOrderRefunded(ctx context.Context, orderID uuid.UUID) (bool, error)
	CancelHoldForOrder(ctx context.Context, orderID uuid.UUID, note string, now time.Time) (*domain.CreditHold, error)
	DebitSellerPending(ctx context.Context, sellerID uuid.UUID, amount int64) error
	ApplyBan(ctx context.Context, sellerID uuid.UUID, until time.Time) error
	ListReports(ctx context.Context, status *domain.ReportStatus) ([]domain.Report, error)
	EnqueueEvent(ctx context.Context, ev domain.OutboxEvent) error
}

type DisputeService struct {
	repo   ReportRepository
	clock  clock.Clock
	logger *zap.Logger
}

const temporaryBanDuration = 7 * 24 * time.Hour

func NewDisputeService(repo ReportRepository, clk clock.Clock, logger *zap.Logger) *DisputeService {
	return &DisputeService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

type CreateReportInput struct {
	ReporterID uuid.UUID
	OrderID    uuid.UUID
	Reason     string
}

// CreateReport files a dispute against a purchased order. Only the order's
// buyer may file, and only one report can be open per order at a time.
func (s *DisputeService) CreateReport(ctx context.Context, in CreateReportInput) (domain.Report, error) {
	if in.Reason == "" {
		return domain.Report{}, domain.ErrReasonRequired
	}

	now := s.clock.Now()
	var report domain.Report

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrder(txCtx, in.OrderID)
		if err != nil {
			return err
		}
		if order.BuyerID != in.ReporterID {
			return domain.ErrForbidden
		}
		if order.Status == domain.OrderStatusRefunded {
			return domain.ErrOrderAlreadyRefunded
		}

		open, err := s.repo.HasOpenReport(txCtx, in.OrderID)
		if err != nil {
			return err
		}
		if open {
			return domain.ErrReportAlreadyOpen
		}

		report = domain.Report{
			ID:             uuid.New(),
			ReporterID:     in.ReporterID,
			ReportedUserID: order.SellerID,
			OrderID:        in.OrderID,
			Reason:         in.Reason,
			Status:         domain.ReportStatusPending,
			PenaltyType:    domain.PenaltyNone,
			CreatedAt:      now,
		}
		return s.repo.CreateReport(txCtx, report)
	})
	if err != nil {
		return domain.Report{}, err
	}
	return report, nil
}

// StartInvestigation moves a pending report to investigating.
func (s *DisputeService) StartInvestigation(ctx context.Context, reportID uuid.UUID, actor domain.Actor) error {
	if !actor.Privileged() {
		return domain.ErrForbidden
	}

	report, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	if err := domain.ValidateReportTransition(report.Status, domain.ReportStatusInvestigating); err != nil {
		if report.Status.Terminal() {
			return domain.ErrReportAlreadyClosed
		}
		return err
	}

	ok, err := s.repo.MarkInvestigating(ctx, reportID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrReportAlreadyClosed
	}
	return nil
}

type ResolveReportInput struct {
	ReportID     uuid.UUID
	Status       domain.ReportStatus
	RefundAmount *int64
	Penalty      *domain.Penalty
	Actor        domain.Actor
	Note         string
}

// ResolveReport closes a dispute. An optional refund transfers money from
// the seller's available balance to the buyer's; the seller side is allowed
// to go negative because matured proceeds may already be withdrawn. An
// optional penalty deducts credit or bans the seller. Resolution is final:
// the compare-and-set on the report row makes every terminal transition
// exactly-once, so a duplicate resolution changes no balance.
func (s *DisputeService) ResolveReport(ctx context.Context, in ResolveReportInput) (domain.Report, error) {
	if !in.Actor.Privileged() {
		return domain.Report{}, domain.ErrForbidden
	}
	if !in.Status.Terminal() {
		return domain.Report{}, domain.ErrInvalidTransition
	}
	if in.Penalty != nil {
		switch in.Penalty.Type {
		case domain.PenaltyCreditDeduction:
			if in.Penalty.Amount <= 0 {
				return domain.Report{}, domain.ErrInvalidAmount
			}
		case domain.PenaltyTemporaryBan, domain.PenaltyPermanentBan:
		default:
			return domain.Report{}, domain.ErrInvalidPenalty
		}
	}

	report, err := s.repo.GetReport(ctx, in.ReportID)
	if err != nil {
		return domain.Report{}, err
	}
	if report.Status.Terminal() {
		return domain.Report{}, domain.ErrReportAlreadyClosed
	}
	if err := domain.ValidateReportTransition(report.Status, in.Status); err != nil {
		return domain.Report{}, err
	}

	refund := int64(0)
	if in.RefundAmount != nil {
		if *in.RefundAmount <= 0 {
			return domain.Report{}, domain.ErrInvalidAmount
		}
		order, err := s.repo.GetOrder(ctx, report.OrderID)
		if err != nil {
			return domain.Report{}, err
		}
		if *in.RefundAmount > order.TotalAmount {
			return domain.Report{}, domain.ErrRefundExceedsOrder
		}
		refund = *in.RefundAmount
	}

	now := s.clock.Now()

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		resolved := report
		resolved.Status = in.Status
		resolved.RefundAmount = in.RefundAmount
		resolved.RefundProcessed = refund > 0
		resolved.PenaltyType = domain.PenaltyNone
		if in.Penalty != nil {
			resolved.PenaltyType = in.Penalty.Type
			resolved.PenaltyAmount = in.Penalty.Amount
		}
		resolved.ResolvedBy = &in.Actor.ID
		resolved.ResolutionNote = in.Note
		resolved.ResolvedAt = &now

		ok, err := s.repo.FinalizeReport(txCtx, resolved, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrReportAlreadyClosed
		}
		report = resolved

		if refund > 0 {
			if err := s.applyRefund(txCtx, resolved, refund, now); err != nil {
				return err
			}
		}
		if in.Penalty != nil {
			if err := s.applyPenalty(txCtx, resolved.ReportedUserID, *in.Penalty, now); err != nil {
				return err
			}
		}

		ev, err := domain.NewOutboxEvent(domain.EventDisputeResolved, resolved.ID, map[string]any{
			"report_id": resolved.ID,
			"status":    resolved.Status,
			"refund":    refund,
		}, now)
		if err != nil {
			return err
		}
		return s.repo.EnqueueEvent(txCtx, ev)
	})
	if err != nil {
		return domain.Report{}, err
	}

	s.logger.Info("report resolved",
		zap.String("report_id", in.ReportID.String()),
		zap.String("status", string(in.Status)),
		zap.Int64("refund", refund),
		zap.String("actor_id", in.Actor.ID.String()),
	)
	return report, nil
}

// applyRefund moves the refund from seller to buyer and voids the sale:
// order marked refunded, the paired hold cancelled if still pending. A hold
// that already matured and released leaves the seller's debit standing as
// accepted debt.
func (s *DisputeService) applyRefund(ctx context.Context, report domain.Report, refund int64, now time.Time) error {
	if err := s.repo.DebitSellerAvailable(ctx, report.ReportedUserID, refund); err != nil {
		return err
	}
	if err := s.repo.CreditBuyerAvailable(ctx, report.ReporterID, refund); err != nil {
		return err
	}

	ok, err := s.repo.MarkOrderRefunded(ctx, report.OrderID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrOrderAlreadyRefunded
	}

	hold, err := s.repo.CancelHoldForOrder(ctx, report.OrderID, "cancelled by dispute "+report.ID.String(), now)
	if err != nil {
		return err
	}
	if hold != nil {
		if err := s.repo.DebitSellerPending(ctx, hold.SellerID, hold.Amount); err != nil {
			return err
		}
	}

	ev, err := domain.NewOutboxEvent(domain.EventRefundProcessed, report.OrderID, map[string]any{
		"report_id": report.ID,
		"order_id":  report.OrderID,
		"buyer_id":  report.ReporterID,
		"amount":    refund,
	}, now)
	if err != nil {
		return err
	}
	return s.repo.EnqueueEvent(ctx, ev)
}

func (s *DisputeService) applyPenalty(ctx context.Context, sellerID uuid.UUID, penalty domain.Penalty, now time.Time) error {
	switch penalty.Type {
	case domain.PenaltyNone:
		return nil
	case domain.PenaltyCreditDeduction:
		return s.repo.DebitSellerAvailable(ctx, sellerID, penalty.Amount)
	case domain.PenaltyTemporaryBan:
		return s.repo.ApplyBan(ctx, sellerID, now.Add(temporaryBanDuration))
	case domain.PenaltyPermanentBan:
		return s.repo.ApplyBan(ctx, sellerID, domain.PermanentBanUntil)
	default:
		return domain.ErrInvalidPenalty
	}
}

// ListReports is the resolver's queue view; read-only.
func (s *DisputeService) ListReports(ctx context.Context, actor domain.Actor, status *domain.ReportStatus) ([]domain.Report, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListReports(ctx, status)
}
