package booking

import "github.com/DamasoSilva/Platzgo-sub000/internal/httperr"

// ===============================
// Error codes
// ===============================

const (
	CodeInvalidInterval        = "invalid_interval"
	CodeEstablishmentClosed    = "establishment_closed"
	CodeInvalidOperatingHours  = "invalid_operating_hours"
	CodeOutsideOperatingHours  = "outside_operating_hours"
	CodeSlotReserved           = "slot_reserved"
	CodeSlotBlocked            = "slot_blocked"
	CodeSlotReservedByPass     = "slot_reserved_by_pass"
	CodeDoubleBooking          = "double_booking"
	CodePermissionDenied       = "permission_denied"
	CodePaymentNotReady        = "payment_not_ready"
	CodeCancellationNotAllowed = "cancellation_not_allowed"
	CodeAlreadyRescheduled     = "already_rescheduled"
	CodeRateLimited            = "rate_limited"
	CodeConflict               = "conflict"
	CodeNotFound               = "not_found"
	CodeInvalidState           = "invalid_state"
	CodeInvalidRequest         = "invalid_request"
	CodeCourtInactive          = "court_inactive"
)

var (
	ErrInvalidInterval        = httperr.ErrBusiness(CodeInvalidInterval)
	ErrEstablishmentClosed    = httperr.ErrBusiness(CodeEstablishmentClosed)
	ErrInvalidOperatingHours  = httperr.ErrBusiness(CodeInvalidOperatingHours)
	ErrOutsideOperatingHours  = httperr.ErrBusiness(CodeOutsideOperatingHours)
	ErrSlotReserved           = httperr.ErrBusiness(CodeSlotReserved)
	ErrSlotBlocked            = httperr.ErrBusiness(CodeSlotBlocked)
	ErrSlotReservedByPass     = httperr.ErrBusiness(CodeSlotReservedByPass)
	ErrDoubleBooking          = httperr.ErrBusiness(CodeDoubleBooking)
	ErrPermissionDenied       = httperr.ErrBusiness(CodePermissionDenied)
	ErrPaymentNotReady        = httperr.ErrBusiness(CodePaymentNotReady)
	ErrCancellationNotAllowed = httperr.ErrBusiness(CodeCancellationNotAllowed)
	ErrAlreadyRescheduled     = httperr.ErrBusiness(CodeAlreadyRescheduled)
	ErrRateLimited            = httperr.ErrBusiness(CodeRateLimited)
	ErrConflict               = httperr.ErrBusiness(CodeConflict)
	ErrNotFound               = httperr.ErrBusiness(CodeNotFound)
	ErrInvalidState           = httperr.ErrBusiness(CodeInvalidState)
	ErrCourtInactive          = httperr.ErrBusiness(CodeCourtInactive)
)

// InvalidRequest carrega o motivo da rejeição.
func InvalidRequest(detail string) error {
	return httperr.Wrap(CodeInvalidRequest, detail)
}

// Retryable reports whether the caller may resubmit the same request.
func Retryable(err error) bool {
	return httperr.IsBusiness(err, CodeConflict)
}
