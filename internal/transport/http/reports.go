package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/app"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
)

// DisputeResolver covers the report lifecycle.
type DisputeResolver interface {
	CreateReport(ctx context.Context, in app.CreateReportInput) (domain.Report, error)
	StartInvestigation(ctx context.Context, reportID uuid.UUID, actor domain.Actor) error
	ResolveReport(ctx context.Context, in app.ResolveReportInput) (domain.Report, error)
	ListReports(ctx context.Context, actor domain.Actor, status *domain.ReportStatus) ([]domain.Report, error)
}

// HandleCreateReport returns the handler for POST /reports.
func HandleCreateReport(svc DisputeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req createReportRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid order_id")
			return
		}

		report, err := svc.CreateReport(r.Context(), app.CreateReportInput{
			ReporterID: actor.ID,
			OrderID:    orderID,
			Reason:     req.Reason,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toReportResponse(report))
	}
}

// HandleInvestigateReport returns the handler for POST /reports/{id}/investigate.
func HandleInvestigateReport(svc DisputeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		reportID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid report id")
			return
		}

		if err := svc.StartInvestigation(r.Context(), reportID, actor); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleResolveReport returns the handler for POST /reports/{id}/resolve.
func HandleResolveReport(svc DisputeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		reportID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid report id")
			return
		}

		var req resolveReportRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.ResolveReportInput{
			ReportID:     reportID,
			Status:       domain.ReportStatus(req.Status),
			RefundAmount: req.RefundAmount,
			Actor:        actor,
			Note:         req.Note,
		}
		if req.Penalty != nil {
			in.Penalty = &domain.Penalty{
				Type:   domain.PenaltyType(req.Penalty.Type),
				Amount: req.Penalty.Amount,
			}
		}

		report, err := svc.ResolveReport(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toReportResponse(report))
	}
}

// HandleListReports returns the handler for GET /reports.
func HandleListReports(svc DisputeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var status *domain.ReportStatus
		if s := r.URL.Query().Get("status"); s != "" {
			rs := domain.ReportStatus(s)
			switch rs {
			case domain.ReportStatusPending, domain.ReportStatusInvestigating,
				domain.ReportStatusResolved, domain.ReportStatusRejected:
				status = &rs
			default:
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid status filter")
				return
			}
		}

		reports, err := svc.ListReports(r.Context(), actor, status)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]reportResponse, 0, len(reports))
		for _, report := range reports {
			resp = append(resp, toReportResponse(report))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type createReportRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type penaltyRequest struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

type resolveReportRequest struct {
	Status       string          `json:"status"`
	RefundAmount *int64          `json:"refund_amount,omitempty"`
	Penalty      *penaltyRequest `json:"penalty,omitempty"`
	Note         string          `json:"note"`
}

type reportResponse struct {
	ID              string     `json:"id"`
	OrderID         string     `json:"order_id"`
	ReporterID      string     `json:"reporter_id"`
	ReportedUserID  string     `json:"reported_user_id"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	RefundAmount    *int64     `json:"refund_amount,omitempty"`
	RefundProcessed bool       `json:"refund_processed"`
	PenaltyType     string     `json:"penalty_type"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toReportResponse(report domain.Report) reportResponse {
	return reportResponse{
		ID:              report.ID.String(),
		OrderID:         report.OrderID.String(),
		ReporterID:      report.ReporterID.String(),
		ReportedUserID:  report.ReportedUserID.String(),
		Reason:          report.Reason,
		Status:          string(report.Status),
		RefundAmount:    report.RefundAmount,
		RefundProcessed: report.RefundProcessed,
		PenaltyType:     string(report.PenaltyType),
		ResolvedAt:      report.ResolvedAt,
		CreatedAt:       report.CreatedAt,
	}
}
