package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/app"
	"github.com/google/uuid"
)

// Purchaser is the minimal interface needed to run a checkout.
type Purchaser interface {
	Purchase(ctx context.Context, in app.PurchaseInput) (app.PurchaseResult, error)
}

// HandlePurchase returns the handler for POST /purchases.
func HandlePurchase(svc Purchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req purchaseRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid product_id")
			return
		}
		if req.Quantity < 1 {
			writeError(w, http.StatusBadRequest, codeInvalidQuantity, "quantity must be at least 1")
			return
		}

		result, err := svc.Purchase(r.Context(), app.PurchaseInput{
			BuyerID:   actor.ID,
			ProductID: productID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		order := result.Order
		units := make([]unitResponse, len(result.Units))
		for i, u := range result.Units {
			units[i] = unitResponse{ID: u.ID.String(), Payload: u.Payload}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(orderResponse{
			ID:          order.ID.String(),
			ProductID:   order.ProductID.String(),
			SellerID:    order.SellerID.String(),
			Quantity:    order.Quantity,
			UnitPrice:   order.UnitPrice,
			TotalAmount: order.TotalAmount,
			Status:      string(order.Status),
			CreatedAt:   order.CreatedAt,
			Units:       units,
		})
	}
}

type purchaseRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type orderResponse struct {
	ID          string         `json:"id"`
	ProductID   string         `json:"product_id"`
	SellerID    string         `json:"seller_id"`
	Quantity    int            `json:"quantity"`
	UnitPrice   int64          `json:"unit_price"`
	TotalAmount int64          `json:"total_amount"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	Units       []unitResponse `json:"units"`
}

type unitResponse struct {
	ID      string `json:"id"`
	Payload string `json:"payload"`
}
