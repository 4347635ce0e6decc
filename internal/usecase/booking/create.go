package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
	"github.com/DamasoSilva/Platzgo-sub000/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateReservationInput struct {
	Actor       domain.Actor
	CourtID     uint
	Start       time.Time
	End         time.Time
	RepeatWeeks int
	PayOnline   bool
}

type CreateReservationOutput struct {
	SeriesID     *string
	Reservations []models.Reservation
	Payments     []models.Payment
}

// ======================================================
// USE CASE
// ======================================================

type CreateReservation struct {
	env     Env
	limiter RateLimiter
}

func NewCreateReservation(env Env, limiter RateLimiter) *CreateReservation {
	return &CreateReservation{env: env, limiter: limiter}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateReservation) Execute(ctx context.Context, in CreateReservationInput) (out *CreateReservationOutput, err error) {
	ctx, span := startSpan(ctx, "booking.CreateReservation")
	defer func() { endSpan(span, err) }()

	// --------------------------------------------------
	// 1️⃣ Validações fora da transação
	// --------------------------------------------------
	if in.Actor.ID == 0 || in.Actor.Role != domain.RoleCustomer {
		return nil, domain.ErrPermissionDenied
	}
	if in.RepeatWeeks < 0 || in.RepeatWeeks > uc.env.Settings.MaxRepeatWeeksCustomer {
		return nil, domain.InvalidRequest(fmt.Sprintf("repeat_weeks must be between 0 and %d", uc.env.Settings.MaxRepeatWeeksCustomer))
	}

	base, err := domain.NewInterval(in.Start, in.End)
	if err != nil {
		return nil, err
	}
	if !base.Start.After(uc.env.Clock.Now()) {
		return nil, domain.ErrInvalidInterval
	}

	// --------------------------------------------------
	// 2️⃣ Rate limit (conta o lote inteiro)
	// --------------------------------------------------
	if uc.limiter != nil {
		ok, lerr := uc.limiter.Allow(ctx, rateKey(in.Actor.ID), in.RepeatWeeks+1)
		if lerr != nil {
			uc.env.Log.WithError(lerr).Warn("rate limiter unavailable, allowing request")
		} else if !ok {
			return nil, domain.ErrRateLimited
		}
	}

	var seriesID *string
	if in.RepeatWeeks > 0 {
		id := uuid.NewString()
		seriesID = &id
	}

	// --------------------------------------------------
	// 3️⃣ Série inteira em uma transação
	// --------------------------------------------------
	err = uc.env.commit(ctx, func(ctx context.Context, tx domain.Tx, batch *outbox.Batch) error {
		out = &CreateReservationOutput{SeriesID: seriesID}

		court, err := tx.LockCourt(ctx, in.CourtID)
		if err != nil {
			return err
		}
		if !court.IsActive {
			return inactiveCourt(court)
		}

		est, err := tx.GetEstablishment(ctx, court.EstablishmentID)
		if err != nil {
			return err
		}

		customer, err := tx.LockUser(ctx, in.Actor.ID)
		if err != nil {
			return err
		}

		loc := timezone.Location(est.Timezone)
		occurrences := domain.ExpandWeekly(base.In(loc), in.RepeatWeeks)

		cal, err := loadCalendar(ctx, tx, est, occurrences)
		if err != nil {
			return err
		}

		online := in.PayOnline || est.OnlinePaymentRequired
		now := uc.env.Clock.Now()

		for _, iv := range occurrences {
			price, err := evaluate(ctx, tx, uc.env.Settings, occurrence{
				ClaimRequest: ClaimRequest{
					Court:         court,
					Establishment: est,
					Interval:      iv,
					CustomerID:    customer.ID,
				},
				Calendar: cal,
			})
			if err != nil {
				return err
			}

			needsPayment := online && price > 0
			status := domain.StatusConfirmed
			if est.RequiresConfirmation || needsPayment {
				status = domain.StatusPending
			}

			r := &models.Reservation{
				CourtID:         court.ID,
				CustomerID:      idPtr(customer.ID),
				CustomerName:    customer.Name,
				CustomerEmail:   customer.Email,
				CustomerPhone:   customer.Phone,
				StartTime:       iv.Start,
				EndTime:         iv.End,
				TotalPriceCents: price,
				Status:          string(status),
				SeriesID:        seriesID,
			}
			if status == domain.StatusConfirmed {
				r.ConfirmedAt = &now
			}
			if err := tx.CreateReservation(ctx, r); err != nil {
				return err
			}

			if needsPayment {
				p, err := openPayment(ctx, tx, uc.env.Settings, est, court, r, customer.Email, batch)
				if err != nil {
					return err
				}
				out.Payments = append(out.Payments, *p)
			}

			batch.Notify(outbox.Notification{
				UserID:        est.OwnerID,
				Kind:          KindReservationCreated,
				Title:         "Nova reserva",
				Body:          fmt.Sprintf("%s reservou %s em %s.", customer.Name, court.Name, when(r)),
				ReservationID: idPtr(r.ID),
			})
			batch.Email(createdEmail(customer.Email, court, r))
			batch.Audit(auditEntry(in.Actor.UserID(), "reservation_created", r, map[string]any{
				"series_id": seriesID,
				"status":    r.Status,
			}))

			out.Reservations = append(out.Reservations, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// openPayment creates the PENDING payment row; the checkout itself starts after commit.
func openPayment(
	ctx context.Context,
	tx domain.Tx,
	settings domain.Settings,
	est *models.Establishment,
	court *models.Court,
	r *models.Reservation,
	payerEmail string,
	batch *outbox.Batch,
) (*models.Payment, error) {

	provider := est.PaymentProvider
	if provider == "" {
		provider = settings.DefaultPaymentProvider
	}

	p := &models.Payment{
		ReservationID: r.ID,
		Provider:      provider,
		Status:        string(domain.PaymentPending),
		AmountCents:   r.TotalPriceCents,
	}
	if err := tx.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	batch.StartPayment(outbox.PaymentStart{
		PaymentID:     p.ID,
		ReservationID: r.ID,
		Provider:      provider,
		AmountCents:   p.AmountCents,
		Title:         fmt.Sprintf("%s - %s", court.Name, when(r)),
		PayerEmail:    payerEmail,
	})
	return p, nil
}
