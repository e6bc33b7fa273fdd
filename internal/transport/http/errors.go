package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidID             = "invalid_id"
	codeInvalidQuantity       = "invalid_quantity"
	codeInvalidAmount         = "invalid_amount"
	codeInvalidPenalty        = "invalid_penalty"
	codeReasonRequired        = "reason_required"
	codeNoteRequired          = "note_required"
	codeEventIDRequired       = "event_id_required"
	codeRefundExceedsOrder    = "refund_exceeds_order"
	codeOwnProduct            = "own_product"
	codeForbidden             = "forbidden"
	codeUserInactive          = "user_inactive"
	codeProductNotSellable    = "product_not_sellable"
	codeInsufficientFunds     = "insufficient_funds"
	codeInsufficientInventory = "insufficient_inventory"
	codeHoldNotPending        = "hold_not_pending"
	codeReportAlreadyOpen     = "report_already_open"
	codeReportAlreadyClosed   = "report_already_resolved"
	codeInvalidTransition     = "invalid_transition"
	codeDuplicateTopUp        = "duplicate_topup"
	codeOrderAlreadyRefunded  = "order_already_refunded"
	codeConflict              = "conflict"
	codeRetryLater            = "retry_later"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Remaining *int   `json:"remaining,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorResponse(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

var sentinelCodes = map[error]string{
	domain.ErrInvalidQuantity:      codeInvalidQuantity,
	domain.ErrInvalidAmount:        codeInvalidAmount,
	domain.ErrInvalidID:            codeInvalidID,
	domain.ErrInvalidPenalty:       codeInvalidPenalty,
	domain.ErrReasonRequired:       codeReasonRequired,
	domain.ErrNoteRequired:         codeNoteRequired,
	domain.ErrEventIDRequired:      codeEventIDRequired,
	domain.ErrRefundExceedsOrder:   codeRefundExceedsOrder,
	domain.ErrOwnProduct:           codeOwnProduct,
	domain.ErrForbidden:            codeForbidden,
	domain.ErrUserInactive:         codeUserInactive,
	domain.ErrProductNotSellable:   codeProductNotSellable,
	domain.ErrInsufficientFunds:    codeInsufficientFunds,
	domain.ErrHoldNotPending:       codeHoldNotPending,
	domain.ErrReportAlreadyOpen:    codeReportAlreadyOpen,
	domain.ErrReportAlreadyClosed:  codeReportAlreadyClosed,
	domain.ErrInvalidTransition:    codeInvalidTransition,
	domain.ErrDuplicateTopUp:       codeDuplicateTopUp,
	domain.ErrOrderAlreadyRefunded: codeOrderAlreadyRefunded,
}

// writeDomainError maps a service error onto the JSON envelope. Kinds decide
// the status; sentinels refine the machine-readable code.
func writeDomainError(w http.ResponseWriter, err error) {
	var inv *domain.InsufficientInventoryError
	if errors.As(err, &inv) {
		remaining := inv.Remaining
		writeErrorResponse(w, http.StatusConflict, errorResponse{
			Error:     inv.Error(),
			Code:      codeInsufficientInventory,
			Remaining: &remaining,
		})
		return
	}

	status := http.StatusInternalServerError
	code := codeInternalError
	msg := "internal error"

	switch domain.KindOf(err) {
	case domain.KindValidation:
		status, code, msg = http.StatusBadRequest, codeInvalidRequestBody, err.Error()
	case domain.KindNotFound:
		status, code, msg = http.StatusNotFound, codeNotFound, err.Error()
	case domain.KindUnauthorized:
		status, code, msg = http.StatusForbidden, codeForbidden, err.Error()
	case domain.KindConflict:
		status, code, msg = http.StatusConflict, codeConflict, err.Error()
	case domain.KindTransient:
		status, code, msg = http.StatusServiceUnavailable, codeRetryLater, "temporary failure, retry the request"
	}

	for sentinel, c := range sentinelCodes {
		if errors.Is(err, sentinel) {
			code = c
			break
		}
	}

	writeError(w, status, code, msg)
}
