package booking

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
	"github.com/DamasoSilva/Platzgo-sub000/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateOwnerReservationInput struct {
	Actor       domain.Actor
	CourtID     uint
	Start       time.Time
	End         time.Time
	RepeatWeeks int

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// ======================================================
// USE CASE
// ======================================================

// CreateOwnerReservation registra reservas lançadas pelo dono, já confirmadas.
type CreateOwnerReservation struct {
	env Env
}

func NewCreateOwnerReservation(env Env) *CreateOwnerReservation {
	return &CreateOwnerReservation{env: env}
}

func (uc *CreateOwnerReservation) Execute(ctx context.Context, in CreateOwnerReservationInput) (out *CreateReservationOutput, err error) {
	ctx, span := startSpan(ctx, "booking.CreateOwnerReservation")
	defer func() { endSpan(span, err) }()

	if in.RepeatWeeks < 0 || in.RepeatWeeks > uc.env.Settings.MaxRepeatWeeksOwner {
		return nil, domain.InvalidRequest(fmt.Sprintf("repeat_weeks must be between 0 and %d", uc.env.Settings.MaxRepeatWeeksOwner))
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, domain.InvalidRequest("customer_name is required")
	}

	base, err := domain.NewInterval(in.Start, in.End)
	if err != nil {
		return nil, err
	}
	if !base.Start.After(uc.env.Clock.Now()) {
		return nil, domain.ErrInvalidInterval
	}

	var seriesID *string
	if in.RepeatWeeks > 0 {
		id := uuid.NewString()
		seriesID = &id
	}

	email := strings.ToLower(strings.TrimSpace(in.CustomerEmail))

	err = uc.env.commit(ctx, func(ctx context.Context, tx domain.Tx, batch *outbox.Batch) error {
		out = &CreateReservationOutput{SeriesID: seriesID}

		court, err := tx.LockCourt(ctx, in.CourtID)
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
		if !court.IsActive {
			return inactiveCourt(court)
		}

		// Conta existente com o mesmo e-mail vira o cliente da reserva.
		var customer *models.User
		if email != "" {
			if customer, err = tx.FindUserByEmail(ctx, email); err != nil {
				return err
			}
			if customer != nil {
				if customer, err = tx.LockUser(ctx, customer.ID); err != nil {
					return err
				}
			}
		}
		var customerID uint
		if customer != nil {
			customerID = customer.ID
		}

		loc := timezone.Location(est.Timezone)
		occurrences := domain.ExpandWeekly(base.In(loc), in.RepeatWeeks)

		cal, err := loadCalendar(ctx, tx, est, occurrences)
		if err != nil {
			return err
		}

		now := uc.env.Clock.Now()
		for _, iv := range occurrences {
			price, err := evaluate(ctx, tx, uc.env.Settings, occurrence{
				ClaimRequest: ClaimRequest{
					Court:         court,
					Establishment: est,
					Interval:      iv,
					CustomerID:    customerID,
				},
				Calendar: cal,
			})
			if err != nil {
				return err
			}

			r := &models.Reservation{
				CourtID:         court.ID,
				CustomerName:    strings.TrimSpace(in.CustomerName),
				CustomerEmail:   email,
				CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
				StartTime:       iv.Start,
				EndTime:         iv.End,
				TotalPriceCents: price,
				Status:          string(domain.StatusConfirmed),
				ConfirmedAt:     &now,
				SeriesID:        seriesID,
				CreatedByOwner:  true,
			}
			if customer != nil {
				r.CustomerID = idPtr(customer.ID)
			}
			if err := tx.CreateReservation(ctx, r); err != nil {
				return err
			}

			batch.Audit(auditEntry(in.Actor.UserID(), "reservation_created_by_owner", r, map[string]any{
				"series_id": seriesID,
			}))
			out.Reservations = append(out.Reservations, *r)
		}

		if email == "" {
			return nil
		}
		first := &out.Reservations[0]
		if customer != nil {
			batch.Email(createdEmail(email, court, first))
			return nil
		}
		return uc.invite(ctx, tx, email, first, now, batch)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// invite stores a hashed one-time token; only the e-mail carries the raw value.
func (uc *CreateOwnerReservation) invite(
	ctx context.Context,
	tx domain.Tx,
	email string,
	r *models.Reservation,
	now time.Time,
	batch *outbox.Batch,
) error {

	token := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash invite token: %w", err)
	}

	inv := &models.AccountInvite{
		Email:         email,
		TokenHash:     string(hash),
		ReservationID: r.ID,
		ExpiresAt:     now.Add(uc.env.Settings.InviteTTL),
	}
	if err := tx.CreateInvite(ctx, inv); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/convite?email=%s&token=%s",
		strings.TrimRight(uc.env.Settings.AppBaseURL, "/"),
		url.QueryEscape(email),
		url.QueryEscape(token),
	)
	batch.Email(inviteEmail(email, link, r))
	return nil
}
