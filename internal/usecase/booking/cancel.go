package booking

import (
	"context"
	"strings"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

type CancelReservationInput struct {
	Actor         domain.Actor
	ReservationID uint
	Reason        string
}

type CancelReservationOutput struct {
	Reservation models.Reservation
	FeeCents    int64
	Refunded    bool
}

type CancelReservation struct {
	env Env
}

func NewCancelReservation(env Env) *CancelReservation {
	return &CancelReservation{env: env}
}

func (uc *CancelReservation) Execute(ctx context.Context, in CancelReservationInput) (out *CancelReservationOutput, err error) {
	ctx, span := startSpan(ctx, "booking.CancelReservation")
	defer func() { endSpan(span, err) }()

	current, err := uc.env.Store.GetReservation(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}

	err = uc.env.commit(ctx, func(ctx context.Context, tx domain.Tx, batch *outbox.Batch) error {
		court, err := tx.LockCourt(ctx, current.CourtID)
		if err != nil {
			return err
		}
		r, err := tx.GetReservation(ctx, in.ReservationID)
		if err != nil {
			return err
		}
		est, err := tx.GetEstablishment(ctx, court.EstablishmentID)
		if err != nil {
			return err
		}

		if err := domain.CanTransition(domain.Status(r.Status), domain.StatusCancelled); err != nil {
			return err
		}

		now := uc.env.Clock.Now()
		status := domain.Status(r.Status)
		var fee int64

		// --------------------------------------------------
		// Quem pode cancelar o quê
		// --------------------------------------------------
		switch {
		case in.Actor.IsAdmin():
			// sem taxa

		case in.Actor.Role == domain.RoleOwner && ownsEstablishment(in.Actor, est):
			if status != domain.StatusPending {
				return domain.ErrCancellationNotAllowed
			}

		case in.Actor.Role == domain.RoleCustomer && r.CustomerID != nil && *r.CustomerID == in.Actor.ID:
			if status == domain.StatusConfirmed && !r.StartTime.After(now) {
				return domain.ErrCancellationNotAllowed
			}
			policy := domain.CancelPolicy{
				MinNoticeHours: est.CancelMinHours,
				FeePercent:     est.CancelFeePercent,
				FeeFixedCents:  est.CancelFeeFixedCents,
			}
			var due bool
			fee, due = policy.Fee(r.TotalPriceCents, r.StartTime, now)
			if due && fee == 0 {
				return domain.ErrCancellationNotAllowed
			}

		default:
			return domain.ErrPermissionDenied
		}

		reason := strings.TrimSpace(in.Reason)
		if err := domain.Cancel(r, now, in.Actor.UserID(), reason, fee); err != nil {
			return err
		}
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}

		refunded, err := refund(ctx, tx, r, fee, batch)
		if err != nil {
			return err
		}

		if in.Actor.Role == domain.RoleCustomer {
			batch.Notify(outbox.Notification{
				UserID:        est.OwnerID,
				Kind:          KindReservationCancelled,
				Title:         "Reserva cancelada pelo cliente",
				Body:          r.CustomerName + " cancelou " + court.Name + " em " + when(r) + ".",
				ReservationID: idPtr(r.ID),
			})
		} else if r.CustomerID != nil {
			batch.Notify(outbox.Notification{
				UserID:        *r.CustomerID,
				Kind:          KindReservationCancelled,
				Title:         "Reserva cancelada",
				Body:          "Sua reserva de " + when(r) + " foi cancelada.",
				ReservationID: idPtr(r.ID),
			})
		}
		if r.CustomerEmail != "" {
			batch.Email(cancelledEmail(r.CustomerEmail, r, "cancelled"))
		}
		batch.Audit(auditEntry(in.Actor.UserID(), "reservation_cancelled", r, map[string]any{
			"fee_cents": fee,
			"refunded":  refunded,
		}))

		out = &CancelReservationOutput{Reservation: *r, FeeCents: fee, Refunded: refunded}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
