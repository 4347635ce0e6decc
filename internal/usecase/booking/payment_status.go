package booking

import (
	"context"
	"strings"
	"time"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

type ApplyPaymentStatusInput struct {
	PaymentID         uint
	Status            domain.PaymentStatus
	ProviderPaymentID string
}

type ApplyPaymentStatusOutput struct {
	Payment     models.Payment
	Reservation models.Reservation
}

// ApplyPaymentStatus moves a payment reported by the provider and reacts on its reservation:
// settled payments auto-confirm when the establishment does not confirm by hand, failures cancel.
type ApplyPaymentStatus struct {
	env Env
}

func NewApplyPaymentStatus(env Env) *ApplyPaymentStatus {
	return &ApplyPaymentStatus{env: env}
}

func (uc *ApplyPaymentStatus) Execute(ctx context.Context, in ApplyPaymentStatusInput) (out *ApplyPaymentStatusOutput, err error) {
	ctx, span := startSpan(ctx, "booking.ApplyPaymentStatus")
	defer func() { endSpan(span, err) }()

	p, err := uc.env.Store.GetPayment(ctx, in.PaymentID)
	if err != nil {
		return nil, err
	}
	current, err := uc.env.Store.GetReservation(ctx, p.ReservationID)
	if err != nil {
		return nil, err
	}

	err = uc.env.commit(ctx, func(ctx context.Context, tx domain.Tx, batch *outbox.Batch) error {
		court, err := tx.LockCourt(ctx, current.CourtID)
		if err != nil {
			return err
		}
		payment, err := tx.GetPayment(ctx, in.PaymentID)
		if err != nil {
			return err
		}
		r, err := tx.GetReservation(ctx, payment.ReservationID)
		if err != nil {
			return err
		}
		if r.CourtID != court.ID {
			// remarcada para outra quadra entre a leitura e o lock
			return domain.ErrConflict
		}

		out = &ApplyPaymentStatusOutput{}

		// Webhooks repetem: mesmo status é no-op.
		if domain.PaymentStatus(payment.Status) == in.Status {
			out.Payment, out.Reservation = *payment, *r
			return nil
		}

		if domain.PaymentStatus(payment.Status) == domain.PaymentCancelled && in.Status.Settled() {
			if in.ProviderPaymentID != "" {
				payment.ProviderPaymentID = in.ProviderPaymentID
			}
			if err := uc.refundLate(ctx, tx, payment, batch); err != nil {
				return err
			}
			out.Payment, out.Reservation = *payment, *r
			return nil
		}

		if err := domain.MovePayment(payment, in.Status); err != nil {
			return err
		}
		if in.ProviderPaymentID != "" {
			payment.ProviderPaymentID = in.ProviderPaymentID
		}
		if err := tx.UpdatePayment(ctx, payment); err != nil {
			return err
		}
		batch.Audit(outbox.AuditEntry{
			Action:   "payment_" + strings.ToLower(string(in.Status)),
			Entity:   "payment",
			EntityID: idPtr(payment.ID),
		})

		est, err := tx.GetEstablishment(ctx, court.EstablishmentID)
		if err != nil {
			return err
		}
		now := uc.env.Clock.Now()
		pending := domain.Status(r.Status) == domain.StatusPending

		switch {
		case in.Status.Settled() && pending && !est.RequiresConfirmation:
			res, err := confirmLocked(ctx, tx, uc.env, confirmation{
				Actor:         domain.SystemActor,
				Establishment: est,
				Reservation:   r,
			}, batch)
			if httperr.IsBusiness(err, domain.CodeSlotReserved) {
				// Pago, mas o horário foi confirmado para outro: devolve.
				if err := uc.cancelUnavailable(ctx, tx, r, now, batch); err != nil {
					return err
				}
				break
			}
			if err != nil {
				return err
			}
			r = &res.Reservation

		case in.Status == domain.PaymentFailed && pending:
			if err := uc.releaseSlot(ctx, tx, r, now, ReasonPaymentFailed, "payment_failed", batch); err != nil {
				return err
			}

		case in.Status == domain.PaymentCancelled && pending:
			// checkout abandonado libera o horário
			if err := uc.releaseSlot(ctx, tx, r, now, ReasonCheckoutAbandoned, "checkout_abandoned", batch); err != nil {
				return err
			}
		}

		// confirmLocked pode ter movido o pagamento para PAID.
		if payment, err = tx.GetPayment(ctx, in.PaymentID); err != nil {
			return err
		}
		out.Payment, out.Reservation = *payment, *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *ApplyPaymentStatus) cancelUnavailable(
	ctx context.Context,
	tx domain.Tx,
	r *models.Reservation,
	now time.Time,
	batch *outbox.Batch,
) error {
	if err := domain.Cancel(r, now, nil, ReasonSlotTaken, 0); err != nil {
		return err
	}
	if err := tx.UpdateReservation(ctx, r); err != nil {
		return err
	}
	if _, err := refundAll(ctx, tx, r, batch); err != nil {
		return err
	}
	if r.CustomerEmail != "" {
		batch.Email(cancelledEmail(r.CustomerEmail, r, "auto_cancelled"))
	}
	batch.Audit(auditEntry(nil, "reservation_auto_cancelled", r, nil))
	return nil
}

// refundLate devolve um pagamento que chegou depois de o checkout ter sido encerrado.
func (uc *ApplyPaymentStatus) refundLate(ctx context.Context, tx domain.Tx, p *models.Payment, batch *outbox.Batch) error {
	if err := domain.MovePayment(p, domain.PaymentRefunded); err != nil {
		return err
	}
	if err := tx.UpdatePayment(ctx, p); err != nil {
		return err
	}
	batch.Refund(outbox.Refund{
		PaymentID:         p.ID,
		Provider:          p.Provider,
		ProviderPaymentID: p.ProviderPaymentID,
		AmountCents:       p.AmountCents,
	})
	batch.Audit(outbox.AuditEntry{
		Action:   "payment_late_refunded",
		Entity:   "payment",
		EntityID: idPtr(p.ID),
	})
	return nil
}

// releaseSlot cancels a PENDING reservation whose checkout will never settle.
func (uc *ApplyPaymentStatus) releaseSlot(
	ctx context.Context,
	tx domain.Tx,
	r *models.Reservation,
	now time.Time,
	reason, event string,
	batch *outbox.Batch,
) error {
	if err := domain.Cancel(r, now, nil, reason, 0); err != nil {
		return err
	}
	if err := tx.UpdateReservation(ctx, r); err != nil {
		return err
	}
	if r.CustomerEmail != "" {
		batch.Email(cancelledEmail(r.CustomerEmail, r, event))
	}
	batch.Audit(auditEntry(nil, "reservation_cancelled", r, map[string]any{"reason": reason}))
	return nil
}
