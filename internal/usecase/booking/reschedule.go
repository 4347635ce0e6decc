package booking

import (
	"context"
	"time"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
	"github.com/DamasoSilva/Platzgo-sub000/internal/timezone"
)

type RescheduleReservationInput struct {
	Actor         domain.Actor
	ReservationID uint
	Start         time.Time
	End           time.Time
}

type RescheduleReservationOutput struct {
	Original    models.Reservation
	Reservation models.Reservation
}

type RescheduleReservation struct {
	env Env
}

func NewRescheduleReservation(env Env) *RescheduleReservation {
	return &RescheduleReservation{env: env}
}

func (uc *RescheduleReservation) Execute(ctx context.Context, in RescheduleReservationInput) (out *RescheduleReservationOutput, err error) {
	ctx, span := startSpan(ctx, "booking.RescheduleReservation")
	defer func() { endSpan(span, err) }()

	if in.Actor.ID == 0 || in.Actor.Role != domain.RoleCustomer {
		return nil, domain.ErrPermissionDenied
	}

	target, err := domain.NewInterval(in.Start, in.End)
	if err != nil {
		return nil, err
	}
	step := uc.env.Settings.RescheduleStepMinutes
	if !domain.IsAligned(target.Start, step) || !domain.IsAligned(target.End, step) {
		return nil, httperr.Wrap(domain.CodeInvalidInterval, "times must be aligned to the reschedule grid")
	}
	if !target.Start.After(uc.env.Clock.Now()) {
		return nil, domain.ErrInvalidInterval
	}

	current, err := uc.env.Store.GetReservation(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}

	err = uc.env.commit(ctx, func(ctx context.Context, tx domain.Tx, batch *outbox.Batch) error {
		court, err := tx.LockCourt(ctx, current.CourtID)
		if err != nil {
			return err
		}
		original, err := tx.GetReservation(ctx, in.ReservationID)
		if err != nil {
			return err
		}
		if original.CustomerID == nil || *original.CustomerID != in.Actor.ID {
			return domain.ErrPermissionDenied
		}

		done, err := tx.HasRescheduleOf(ctx, original.ID)
		if err != nil {
			return err
		}
		if done {
			return domain.ErrAlreadyRescheduled
		}

		now := uc.env.Clock.Now()
		if domain.Status(original.Status) == domain.StatusCancelled || !original.StartTime.After(now) {
			return domain.ErrInvalidState
		}

		if !court.IsActive {
			return inactiveCourt(court)
		}
		est, err := tx.GetEstablishment(ctx, court.EstablishmentID)
		if err != nil {
			return err
		}
		if _, err := tx.LockUser(ctx, in.Actor.ID); err != nil {
			return err
		}

		iv := target.In(timezone.Location(est.Timezone))
		cal, err := loadCalendar(ctx, tx, est, []domain.Interval{iv})
		if err != nil {
			return err
		}

		price, err := evaluate(ctx, tx, uc.env.Settings, occurrence{
			ClaimRequest: ClaimRequest{
				Court:         court,
				Establishment: est,
				Interval:      iv,
				CustomerID:    in.Actor.ID,
				ExcludeIDs:    []uint{original.ID},
			},
			Calendar: cal,
		})
		if err != nil {
			return err
		}

		moved := &models.Reservation{
			CourtID:           court.ID,
			CustomerID:        original.CustomerID,
			CustomerName:      original.CustomerName,
			CustomerEmail:     original.CustomerEmail,
			CustomerPhone:     original.CustomerPhone,
			StartTime:         iv.Start,
			EndTime:           iv.End,
			TotalPriceCents:   price,
			Status:            string(domain.StatusPending),
			RescheduledFromID: idPtr(original.ID),
		}
		// O índice único em rescheduled_from_id é a última barreira contra corrida.
		if err := tx.CreateReservation(ctx, moved); err != nil {
			return err
		}

		if err := domain.Cancel(original, now, in.Actor.UserID(), ReasonRescheduled, 0); err != nil {
			return err
		}
		if err := tx.UpdateReservation(ctx, original); err != nil {
			return err
		}

		carried, err := uc.handOverPayment(ctx, tx, est, court, original, moved, batch)
		if err != nil {
			return err
		}

		batch.Notify(outbox.Notification{
			UserID:        est.OwnerID,
			Kind:          KindReservationRescheduled,
			Title:         "Reserva remarcada",
			Body:          original.CustomerName + " remarcou de " + when(original) + " para " + when(moved) + ".",
			ReservationID: idPtr(moved.ID),
		})
		if moved.CustomerEmail != "" {
			batch.Email(createdEmail(moved.CustomerEmail, court, moved))
		}
		batch.Audit(auditEntry(in.Actor.UserID(), "reservation_rescheduled", moved, map[string]any{
			"rescheduled_from_id": original.ID,
		}))

		// Já pago e sem confirmação manual: confirma como no webhook.
		if carried != nil && domain.PaymentStatus(carried.Status).Settled() && !est.RequiresConfirmation {
			if _, err := confirmLocked(ctx, tx, uc.env, confirmation{
				Actor:         domain.SystemActor,
				Establishment: est,
				Reservation:   moved,
			}, batch); err != nil {
				return err
			}
		}

		out = &RescheduleReservationOutput{Original: *original, Reservation: *moved}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// handOverPayment moves the original's payment to moved when the amount still matches.
// Otherwise the old payment is refunded (or closed) and a new checkout is opened for moved.
// It returns the payment carried over, if any.
func (uc *RescheduleReservation) handOverPayment(
	ctx context.Context,
	tx domain.Tx,
	est *models.Establishment,
	court *models.Court,
	original, moved *models.Reservation,
	batch *outbox.Batch,
) (*models.Payment, error) {
	payment, err := tx.GetPaymentByReservation(ctx, original.ID)
	if err != nil || payment == nil {
		return nil, err
	}

	status := domain.PaymentStatus(payment.Status)
	if status != domain.PaymentPending && !status.Settled() {
		// encerrado (falhou, devolvido): fica com a reserva original
		return nil, nil
	}

	if payment.AmountCents == moved.TotalPriceCents {
		payment.ReservationID = moved.ID
		if err := tx.UpdatePayment(ctx, payment); err != nil {
			return nil, err
		}
		return payment, nil
	}

	// Valor mudou: devolve o antigo e abre um checkout com o preço novo.
	if _, err := refundAll(ctx, tx, original, batch); err != nil {
		return nil, err
	}
	if moved.TotalPriceCents > 0 {
		if _, err := openPayment(ctx, tx, uc.env.Settings, est, court, moved, moved.CustomerEmail, batch); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
