package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidID            = errors.New("invalid id")
	ErrReasonRequired       = errors.New("reason required")
	ErrNoteRequired         = errors.New("note required")
	ErrEventIDRequired      = errors.New("external event id required")
	ErrInvalidPenalty       = errors.New("invalid penalty")
	ErrRefundExceedsOrder   = errors.New("refund exceeds order total")
	ErrUserNotFound         = errors.New("user not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrHoldNotFound         = errors.New("hold not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrForbidden            = errors.New("forbidden")
	ErrOwnProduct           = errors.New("cannot buy own product")
	ErrUserInactive         = errors.New("user is inactive")
	ErrProductNotSellable   = errors.New("product not sellable")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrHoldNotPending       = errors.New("hold is not pending")
	ErrReportAlreadyOpen    = errors.New("report already open for order")
	ErrReportAlreadyClosed  = errors.New("report already resolved")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDuplicateTopUp       = errors.New("top-up event already processed")
	ErrOrderAlreadyRefunded = errors.New("order already refunded")
)

// InsufficientInventoryError reports a failed reservation together with the
// true number of units still available at the moment the transaction aborted.
type InsufficientInventoryError struct {
	Remaining int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: %d available", e.Remaining)
}

// TransientError wraps an infrastructure failure (serialization conflict,
// deadlock, timeout). The enclosing transaction left no partial effect, so
// the whole call is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Kind buckets domain errors for transport-level mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindConflict
	KindTransient
)

var errorKinds = map[error]Kind{
	ErrInvalidQuantity:      KindValidation,
	ErrInvalidAmount:        KindValidation,
	ErrInvalidID:            KindValidation,
	ErrReasonRequired:       KindValidation,
	ErrNoteRequired:         KindValidation,
	ErrEventIDRequired:      KindValidation,
	ErrInvalidPenalty:       KindValidation,
	ErrRefundExceedsOrder:   KindValidation,
	ErrOwnProduct:           KindValidation,
	ErrUserNotFound:         KindNotFound,
	ErrProductNotFound:      KindNotFound,
	ErrOrderNotFound:        KindNotFound,
	ErrHoldNotFound:         KindNotFound,
	ErrReportNotFound:       KindNotFound,
	ErrForbidden:            KindUnauthorized,
	ErrUserInactive:         KindConflict,
	ErrProductNotSellable:   KindConflict,
	ErrInsufficientFunds:    KindConflict,
	ErrHoldNotPending:       KindConflict,
	ErrReportAlreadyOpen:    KindConflict,
	ErrReportAlreadyClosed:  KindConflict,
	ErrInvalidTransition:    KindConflict,
	ErrDuplicateTopUp:       KindConflict,
	ErrOrderAlreadyRefunded: KindConflict,
}

// KindOf classifies err into one of the error kinds. Wrapped errors are
// unwrapped; unknown errors report KindUnknown.
func KindOf(err error) Kind {
	var inv *InsufficientInventoryError
	if errors.As(err, &inv) {
		return KindConflict
	}
	var transient *TransientError
	if errors.As(err, &transient) {
		return KindTransient
	}
	for sentinel, kind := range errorKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}
