package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	ReportStatusPending       ReportStatus = "pending"
	ReportStatusInvestigating ReportStatus = "investigating"
	ReportStatusResolved      ReportStatus = "resolved"
	ReportStatusRejected      ReportStatus = "rejected"
)

// Terminal reports whether the status admits no further transition.
func (s ReportStatus) Terminal() bool {
	return s == ReportStatusResolved || s == ReportStatusRejected
}

// ValidateReportTransition is the single place report transitions are
// checked. Pending may move straight to a terminal state; investigating is
// an optional intermediate step.
func ValidateReportTransition(from, to ReportStatus) error {
	switch from {
	case ReportStatusPending:
		if to == ReportStatusInvestigating || to.Terminal() {
			return nil
		}
	case ReportStatusInvestigating:
		if to.Terminal() {
			return nil
		}
	}
	return ErrInvalidTransition
}

type PenaltyType string

const (
	PenaltyNone            PenaltyType = "none"
	PenaltyCreditDeduction PenaltyType = "credit_deduction"
	PenaltyTemporaryBan    PenaltyType = "temporary_ban"
	PenaltyPermanentBan    PenaltyType = "permanent_ban"
)

// Penalty describes the optional sanction applied to the seller when a
// report is resolved. Amount is only meaningful for credit deductions.
type Penalty struct {
	Type   PenaltyType
	Amount int64
}

// Report is a buyer-filed dispute against a purchased order. It is mutated
// only by privileged resolvers, exactly once per terminal state.
type Report struct {
	ID              uuid.UUID
	ReporterID      uuid.UUID
	ReportedUserID  uuid.UUID
	OrderID         uuid.UUID
	Reason          string
	Status          ReportStatus
	RefundAmount    *int64
	RefundProcessed bool
	PenaltyType     PenaltyType
	PenaltyAmount   int64
	ResolvedBy      *uuid.UUID
	ResolutionNote  string
	ResolvedAt      *time.Time
	CreatedAt       time.Time
}
