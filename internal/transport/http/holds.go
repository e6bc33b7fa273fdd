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

// HoldResolver covers the admin-facing hold operations.
type HoldResolver interface {
	ResolveHold(ctx context.Context, in app.ResolveHoldInput) (domain.CreditHold, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, status *domain.HoldStatus) ([]domain.CreditHold, error)
}

// HandleResolveHold returns the handler for POST /holds/{id}/resolve.
func HandleResolveHold(svc HoldResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		holdID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid hold id")
			return
		}

		var req resolveHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		hold, err := svc.ResolveHold(r.Context(), app.ResolveHoldInput{
			HoldID: holdID,
			Action: domain.HoldAction(req.Action),
			Actor:  actor,
			Note:   req.Note,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(holdResponse{
			ID:         hold.ID.String(),
			OrderID:    hold.OrderID.String(),
			SellerID:   hold.SellerID.String(),
			Amount:     hold.Amount,
			Status:     string(hold.Status),
			MatureAt:   hold.MatureAt,
			ResolvedAt: hold.ResolvedAt,
			Notes:      hold.Notes,
		})
	}
}

// HandleListHolds returns the handler for GET /holds. Sellers see their own
// holds; a status query filters.
func HandleListHolds(svc HoldResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var status *domain.HoldStatus
		if s := r.URL.Query().Get("status"); s != "" {
			hs := domain.HoldStatus(s)
			switch hs {
			case domain.HoldStatusPending, domain.HoldStatusReleased, domain.HoldStatusCancelled:
				status = &hs
			default:
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid status filter")
				return
			}
		}

		holds, err := svc.ListBySeller(r.Context(), actor.ID, status)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]holdResponse, 0, len(holds))
		for _, hold := range holds {
			resp = append(resp, holdResponse{
				ID:         hold.ID.String(),
				OrderID:    hold.OrderID.String(),
				SellerID:   hold.SellerID.String(),
				Amount:     hold.Amount,
				Status:     string(hold.Status),
				MatureAt:   hold.MatureAt,
				ResolvedAt: hold.ResolvedAt,
				Notes:      hold.Notes,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type resolveHoldRequest struct {
	Action string `json:"action"`
	Note   string `json:"note"`
}

type holdResponse struct {
	ID         string     `json:"id"`
	OrderID    string     `json:"order_id"`
	SellerID   string     `json:"seller_id"`
	Amount     int64      `json:"amount"`
	Status     string     `json:"status"`
	MatureAt   time.Time  `json:"mature_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	Notes      []string   `json:"notes"`
}
