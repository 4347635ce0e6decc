package booking

import (
	"context"
	"time"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

// CascadeOutcome is one competitor cancelled by a confirmation.
// Position is the arrival order among the competitors, starting at 1.
type CascadeOutcome struct {
	ReservationID uint
	Position      int
	Refunded      bool
}

// CascadeResolver cancels every PENDING reservation whose raw interval
// overlaps a freshly confirmed one. Nobody is promoted.
type CascadeResolver struct{}

func (CascadeResolver) Resolve(
	ctx context.Context,
	tx domain.Tx,
	confirmed *models.Reservation,
	now time.Time,
	batch *outbox.Batch,
) ([]CascadeOutcome, error) {

	competitors, err := tx.ListOverlapping(ctx, domain.OverlapQuery{
		CourtID:    confirmed.CourtID,
		Interval:   domain.ReservationInterval(confirmed),
		Statuses:   []domain.Status{domain.StatusPending},
		ExcludeIDs: []uint{confirmed.ID},
	})
	if err != nil {
		return nil, err
	}

	outcomes := make([]CascadeOutcome, 0, len(competitors))
	for i := range competitors {
		r := &competitors[i]

		if err := domain.Cancel(r, now, nil, ReasonSlotTaken, 0); err != nil {
			return nil, err
		}
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return nil, err
		}

		refunded, err := refundAll(ctx, tx, r, batch)
		if err != nil {
			return nil, err
		}

		if r.CustomerID != nil {
			batch.Notify(outbox.Notification{
				UserID:        *r.CustomerID,
				Kind:          KindReservationAutoCancelled,
				Title:         "Reserva cancelada",
				Body:          "O horário de " + when(r) + " foi confirmado para outra reserva.",
				ReservationID: idPtr(r.ID),
			})
		}
		if r.CustomerEmail != "" {
			batch.Email(cancelledEmail(r.CustomerEmail, r, "auto_cancelled"))
		}
		batch.Audit(auditEntry(nil, "reservation_auto_cancelled", r, map[string]any{
			"confirmed_id": confirmed.ID,
			"position":     i + 1,
		}))

		outcomes = append(outcomes, CascadeOutcome{ReservationID: r.ID, Position: i + 1, Refunded: refunded})
	}

	return outcomes, nil
}

// refundAll marks a settled payment refunded in full and queues the provider call.
func refundAll(ctx context.Context, tx domain.Tx, r *models.Reservation, batch *outbox.Batch) (bool, error) {
	return refund(ctx, tx, r, 0, batch)
}

// refund returns money minus fee. A payment that never settled is closed instead.
func refund(ctx context.Context, tx domain.Tx, r *models.Reservation, feeCents int64, batch *outbox.Batch) (bool, error) {
	p, err := tx.GetPaymentByReservation(ctx, r.ID)
	if err != nil || p == nil {
		return false, err
	}

	status := domain.PaymentStatus(p.Status)
	if status == domain.PaymentPending {
		if err := domain.MovePayment(p, domain.PaymentCancelled); err != nil {
			return false, err
		}
		return false, tx.UpdatePayment(ctx, p)
	}
	if !status.Settled() {
		return false, nil
	}

	amount := p.AmountCents - feeCents
	if amount <= 0 {
		return false, nil
	}

	if err := domain.MovePayment(p, domain.PaymentRefunded); err != nil {
		return false, err
	}
	if err := tx.UpdatePayment(ctx, p); err != nil {
		return false, err
	}

	batch.Refund(outbox.Refund{
		PaymentID:         p.ID,
		Provider:          p.Provider,
		ProviderPaymentID: p.ProviderPaymentID,
		AmountCents:       amount,
		Partial:           feeCents > 0,
	})
	return true, nil
}
