package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Hoang7604119/mmostore-sub002/internal/app"
	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
)

type stubHoldResolver struct {
	hold  domain.CreditHold
	holds []domain.CreditHold
	err   error
	got   app.ResolveHoldInput
}

func (s *stubHoldResolver) ResolveHold(_ context.Context, in app.ResolveHoldInput) (domain.CreditHold, error) {
	s.got = in
	return s.hold, s.err
}

func (s *stubHoldResolver) ListBySeller(_ context.Context, _ uuid.UUID, _ *domain.HoldStatus) ([]domain.CreditHold, error) {
	return s.holds, s.err
}

func TestHandleResolveHold(t *testing.T) {
	t.Parallel()

	adminID := uuid.New()
	holdID := uuid.New()
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)

	serve := func(stub *stubHoldResolver, target, body string) *httptest.ResponseRecorder {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /holds/{id}/resolve", HandleResolveHold(stub))

		r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		r.Header.Set(headerUserID, adminID.String())
		r.Header.Set(headerUserRole, "admin")

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		return w
	}

	t.Run("release resolves the hold", func(t *testing.T) {
		stub := &stubHoldResolver{hold: domain.CreditHold{
			ID:         holdID,
			OrderID:    uuid.New(),
			SellerID:   uuid.New(),
			Amount:     60_000,
			Status:     domain.HoldStatusReleased,
			MatureAt:   now,
			ResolvedAt: &now,
			Notes:      []string{"clean order"},
		}}

		w := serve(stub, "/holds/"+holdID.String()+"/resolve", `{"action":"release","note":"clean order"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if stub.got.HoldID != holdID {
			t.Fatalf("expected hold id from path, got %s", stub.got.HoldID)
		}
		if stub.got.Action != domain.HoldActionRelease || stub.got.Note != "clean order" {
			t.Fatalf("unexpected input %+v", stub.got)
		}
		if stub.got.Actor.ID != adminID || stub.got.Actor.Role != domain.RoleAdmin {
			t.Fatalf("unexpected actor %+v", stub.got.Actor)
		}

		var resp holdResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "released" || resp.Amount != 60_000 {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("malformed hold id rejected", func(t *testing.T) {
		w := serve(&stubHoldResolver{}, "/holds/not-a-uuid/resolve", `{"action":"release","note":"n"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("already resolved maps to conflict", func(t *testing.T) {
		stub := &stubHoldResolver{err: domain.ErrHoldNotPending}

		w := serve(stub, "/holds/"+holdID.String()+"/resolve", `{"action":"cancel","note":"n"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Code != codeHoldNotPending {
			t.Fatalf("expected code %s, got %s", codeHoldNotPending, resp.Code)
		}
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		stub := &stubHoldResolver{err: domain.ErrForbidden}

		w := serve(stub, "/holds/"+holdID.String()+"/resolve", `{"action":"release","note":"n"}`)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})
}

func TestHandleListHolds(t *testing.T) {
	t.Parallel()

	sellerID := uuid.New()

	serve := func(stub *stubHoldResolver, target string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		r.Header.Set(headerUserID, sellerID.String())
		r.Header.Set(headerUserRole, "user")

		w := httptest.NewRecorder()
		HandleListHolds(stub)(w, r)
		return w
	}

	t.Run("lists the seller's holds", func(t *testing.T) {
		stub := &stubHoldResolver{holds: []domain.CreditHold{
			{ID: uuid.New(), SellerID: sellerID, Amount: 10_000, Status: domain.HoldStatusPending},
			{ID: uuid.New(), SellerID: sellerID, Amount: 20_000, Status: domain.HoldStatusReleased},
		}}

		w := serve(stub, "/holds")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp []holdResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != 2 {
			t.Fatalf("expected 2 holds, got %d", len(resp))
		}
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		w := serve(&stubHoldResolver{}, "/holds?status=cancelled")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if body := strings.TrimSpace(w.Body.String()); body != "[]" {
			t.Fatalf("expected empty array, got %s", body)
		}
	})

	t.Run("invalid status filter rejected", func(t *testing.T) {
		w := serve(&stubHoldResolver{}, "/holds?status=expired")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
