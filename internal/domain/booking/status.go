package booking

import (
	"time"

	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

// ===============================
// Reservation Status
// ===============================

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

var reservationTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

// ActiveStatuses are the states that occupy a court.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func CanTransition(from, to Status) error {
	for _, s := range reservationTransitions[from] {
		if s == to {
			return nil
		}
	}
	return ErrInvalidState
}

// ===============================
// Payment Status
// ===============================

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentAuthorized PaymentStatus = "AUTHORIZED"
	PaymentPaid       PaymentStatus = "PAID"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
	PaymentCancelled  PaymentStatus = "CANCELLED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentAuthorized, PaymentPaid, PaymentFailed, PaymentCancelled},
	PaymentAuthorized: {PaymentPaid, PaymentRefunded, PaymentCancelled},
	PaymentPaid:       {PaymentRefunded},
	// checkout abandonado que o provedor acabou aprovando
	PaymentCancelled: {PaymentRefunded},
}

func CanTransitionPayment(from, to PaymentStatus) error {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return nil
		}
	}
	return ErrInvalidState
}

// Settled reports whether money was captured or reserved.
func (p PaymentStatus) Settled() bool {
	return p == PaymentAuthorized || p == PaymentPaid
}

// ===============================
// Pass Status
// ===============================

type PassStatus string

const (
	PassActive    PassStatus = "ACTIVE"
	PassPending   PassStatus = "PENDING"
	PassCancelled PassStatus = "CANCELLED"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(r *models.Reservation, now time.Time) error {
	if err := CanTransition(Status(r.Status), StatusConfirmed); err != nil {
		return err
	}
	r.Status = string(StatusConfirmed)
	r.ConfirmedAt = &now
	return nil
}

func Cancel(r *models.Reservation, now time.Time, by *uint, reason string, feeCents int64) error {
	if err := CanTransition(Status(r.Status), StatusCancelled); err != nil {
		return err
	}
	r.Status = string(StatusCancelled)
	r.CancelledAt = &now
	r.CancelledByID = by
	r.CancelFeeCents = feeCents
	if reason != "" {
		r.CancelReason = &reason
	}
	return nil
}

func MovePayment(p *models.Payment, to PaymentStatus) error {
	if err := CanTransitionPayment(PaymentStatus(p.Status), to); err != nil {
		return err
	}
	p.Status = string(to)
	return nil
}

func ReservationInterval(r *models.Reservation) Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}
