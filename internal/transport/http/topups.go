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

// TopUpCreditor ingests verified payment gateway events.
type TopUpCreditor interface {
	Credit(ctx context.Context, in app.CreditInput) (domain.TopUp, error)
}

// HandleTopUp returns the handler for POST /topups. The gateway signature is
// verified upstream; this endpoint only enforces idempotency.
func HandleTopUp(svc TopUpCreditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req topUpRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid user_id")
			return
		}

		topup, err := svc.Credit(r.Context(), app.CreditInput{
			ExternalEventID: req.EventID,
			UserID:          userID,
			Amount:          req.Amount,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(topUpResponse{
			EventID:    topup.ExternalEventID,
			UserID:     topup.UserID.String(),
			Amount:     topup.Amount,
			CreditedAt: topup.CreditedAt,
		})
	}
}

type topUpRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Amount  int64  `json:"amount"`
}

type topUpResponse struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Amount     int64     `json:"amount"`
	CreditedAt time.Time `json:"credited_at"`
}
