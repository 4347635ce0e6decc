package booking

import (
	"context"
	"fmt"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

type ConfirmReservationInput struct {
	Actor         domain.Actor
	ReservationID uint
}

type ConfirmReservationOutput struct {
	Reservation   models.Reservation
	AutoCancelled []CascadeOutcome
}

type ConfirmReservation struct {
	env Env
}

func NewConfirmReservation(env Env) *ConfirmReservation {
	return &ConfirmReservation{env: env}
}

func (uc *ConfirmReservation) Execute(ctx context.Context, in ConfirmReservationInput) (out *ConfirmReservationOutput, err error) {
	ctx, span := startSpan(ctx, "booking.ConfirmReservation")
	defer func() { endSpan(span, err) }()

	// Leitura sem lock só para descobrir a quadra.
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
		if !ownsEstablishment(in.Actor, est) {
			return domain.ErrPermissionDenied
		}

		out, err = confirmLocked(ctx, tx, uc.env, confirmation{
			Actor:         in.Actor,
			Establishment: est,
			Reservation:   r,
		}, batch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type confirmation struct {
	Actor         domain.Actor
	Establishment *models.Establishment
	Reservation   *models.Reservation
}

// confirmLocked expects the reservation's court to be locked by tx.
func confirmLocked(ctx context.Context, tx domain.Tx, env Env, c confirmation, batch *outbox.Batch) (*ConfirmReservationOutput, error) {
	r := c.Reservation

	if err := domain.CanTransition(domain.Status(r.Status), domain.StatusConfirmed); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Pagamento online precisa estar autorizado
	// --------------------------------------------------
	payment, err := tx.GetPaymentByReservation(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	if payment != nil && !domain.PaymentStatus(payment.Status).Settled() {
		return nil, domain.ErrPaymentNotReady
	}

	// --------------------------------------------------
	// Outra reserva já confirmada no mesmo horário
	// --------------------------------------------------
	buffer := c.Establishment.BufferMinutes
	confirmed, err := tx.ListOverlapping(ctx, domain.OverlapQuery{
		CourtID:    r.CourtID,
		Interval:   domain.ReservationInterval(r).ExpandWithBuffer(2 * buffer),
		Statuses:   []domain.Status{domain.StatusConfirmed},
		ExcludeIDs: []uint{r.ID},
	})
	if err != nil {
		return nil, err
	}
	if len(confirmed) > 0 {
		return nil, domain.ErrSlotReserved
	}

	now := env.Clock.Now()
	if err := domain.Confirm(r, now); err != nil {
		return nil, err
	}
	if err := tx.UpdateReservation(ctx, r); err != nil {
		return nil, err
	}

	if payment != nil && domain.PaymentStatus(payment.Status) == domain.PaymentAuthorized {
		if err := domain.MovePayment(payment, domain.PaymentPaid); err != nil {
			return nil, err
		}
		if err := tx.UpdatePayment(ctx, payment); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// Cascata
	// --------------------------------------------------
	outcomes, err := CascadeResolver{}.Resolve(ctx, tx, r, now, batch)
	if err != nil {
		return nil, err
	}

	if r.CustomerID != nil {
		batch.Notify(outbox.Notification{
			UserID:        *r.CustomerID,
			Kind:          KindReservationConfirmed,
			Title:         "Reserva confirmada",
			Body:          "Sua reserva de " + when(r) + " foi confirmada.",
			ReservationID: idPtr(r.ID),
		})
	}
	if r.CustomerEmail != "" {
		batch.Email(confirmedEmail(r.CustomerEmail, r))
	}
	if len(outcomes) > 0 {
		batch.Notify(outbox.Notification{
			UserID:        c.Establishment.OwnerID,
			Kind:          KindCascadeSummary,
			Title:         "Reservas canceladas automaticamente",
			Body:          fmt.Sprintf("%d reserva(s) pendente(s) no mesmo horário foram canceladas.", len(outcomes)),
			ReservationID: idPtr(r.ID),
		})
	}
	batch.Audit(auditEntry(c.Actor.UserID(), "reservation_confirmed", r, map[string]any{
		"auto_cancelled": len(outcomes),
	}))

	return &ConfirmReservationOutput{Reservation: *r, AutoCancelled: outcomes}, nil
}
