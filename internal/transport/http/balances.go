package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Hoang7604119/mmostore-sub002/internal/app"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
)

// Reporter is the read-only query surface.
type Reporter interface {
	GetBalance(ctx context.Context, userID uuid.UUID, actor domain.Actor) (app.Balance, error)
	ListOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	SellerStats(ctx context.Context, sellerID uuid.UUID, actor domain.Actor) (domain.SellerStats, error)
}

// HandleGetBalance returns the handler for GET /balances/{id}.
func HandleGetBalance(svc Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		userID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid user id")
			return
		}

		balance, err := svc.GetBalance(r.Context(), userID, actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(balanceResponse{
			UserID:    balance.UserID.String(),
			Available: balance.Available,
			Pending:   balance.Pending,
		})
	}
}

// HandleListOrders returns the handler for GET /orders (the actor's own).
func HandleListOrders(svc Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		orders, err := svc.ListOrders(r.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			resp = append(resp, orderResponse{
				ID:          order.ID.String(),
				ProductID:   order.ProductID.String(),
				SellerID:    order.SellerID.String(),
				Quantity:    order.Quantity,
				UnitPrice:   order.UnitPrice,
				TotalAmount: order.TotalAmount,
				Status:      string(order.Status),
				CreatedAt:   order.CreatedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleSellerStats returns the handler for GET /sellers/{id}/stats.
func HandleSellerStats(svc Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		sellerID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid seller id")
			return
		}

		stats, err := svc.SellerStats(r.Context(), sellerID, actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sellerStatsResponse{
			SoldUnits:     stats.SoldUnits,
			PendingTotal:  stats.PendingTotal,
			ReleasedTotal: stats.ReleasedTotal,
			Debt:          stats.Debt,
		})
	}
}

type balanceResponse struct {
	UserID    string `json:"user_id"`
	Available int64  `json:"available_balance"`
	Pending   int64  `json:"pending_balance"`
}

type sellerStatsResponse struct {
	SoldUnits     int   `json:"sold_units"`
	PendingTotal  int64 `json:"pending_total"`
	ReleasedTotal int64 `json:"released_total"`
	Debt          int64 `json:"debt"`
}
