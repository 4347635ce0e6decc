package memstore

import (
	"context"
	"time"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

// tx works on a private copy; Store.WithinTx already serialized it.
type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) LockCourt(_ context.Context, id uint) (*models.Court, error) {
	return t.st.court(id)
}

func (t *tx) LockUser(_ context.Context, id uint) (*models.User, error) {
	return t.st.user(id)
}

func (t *tx) GetEstablishment(_ context.Context, id uint) (*models.Establishment, error) {
	return t.st.establishment(id)
}

func (t *tx) ListWeekdayHours(_ context.Context, establishmentID uint) ([]models.WeekdayHours, error) {
	var out []models.WeekdayHours
	for _, wh := range t.st.weekdayHours {
		if wh.EstablishmentID == establishmentID {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (t *tx) ListHolidays(_ context.Context, establishmentID uint, fromDate, toDate string) ([]models.Holiday, error) {
	var out []models.Holiday
	for _, h := range t.st.holidays {
		if h.EstablishmentID == establishmentID && h.Date >= fromDate && h.Date <= toDate {
			out = append(out, h)
		}
	}
	return out, nil
}

func (t *tx) ListOverlapping(_ context.Context, q domain.OverlapQuery) ([]models.Reservation, error) {
	return t.st.overlapping(q), nil
}

func (t *tx) ListBlocksOverlapping(_ context.Context, courtID uint, iv domain.Interval) ([]models.Block, error) {
	return t.st.blocksOverlapping(courtID, iv), nil
}

func (t *tx) ListActivePasses(_ context.Context, courtID uint, month string, weekday int) ([]models.MonthlyPass, error) {
	var out []models.MonthlyPass
	for _, p := range t.st.passes {
		if p.CourtID == courtID && p.Month == month && p.Weekday == weekday && p.Status == string(domain.PassActive) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *tx) GetReservation(_ context.Context, id uint) (*models.Reservation, error) {
	return t.st.reservation(id)
}

func (t *tx) HasRescheduleOf(_ context.Context, reservationID uint) (bool, error) {
	for _, r := range t.st.reservations {
		if r.RescheduledFromID != nil && *r.RescheduledFromID == reservationID {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) CreateReservation(ctx context.Context, r *models.Reservation) error {
	// mesmo papel do índice único idx_reservations_rescheduled_from
	if r.RescheduledFromID != nil {
		taken, _ := t.HasRescheduleOf(ctx, *r.RescheduledFromID)
		if taken {
			return domain.ErrAlreadyRescheduled
		}
	}
	now := t.now()
	r.ID = t.st.id()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	t.st.reservations[r.ID] = *r
	return nil
}

func (t *tx) UpdateReservation(_ context.Context, r *models.Reservation) error {
	if _, ok := t.st.reservations[r.ID]; !ok {
		return domain.ErrNotFound
	}
	r.UpdatedAt = t.now()
	t.st.reservations[r.ID] = *r
	return nil
}

func (t *tx) GetPayment(_ context.Context, id uint) (*models.Payment, error) {
	return t.st.payment(id)
}

func (t *tx) GetPaymentByReservation(_ context.Context, reservationID uint) (*models.Payment, error) {
	var found *models.Payment
	for _, p := range t.st.payments {
		if p.ReservationID == reservationID && (found == nil || p.ID > found.ID) {
			p := p
			found = &p
		}
	}
	return found, nil
}

func (t *tx) CreatePayment(_ context.Context, p *models.Payment) error {
	now := t.now()
	p.ID = t.st.id()
	p.CreatedAt, p.UpdatedAt = now, now
	t.st.payments[p.ID] = *p
	return nil
}

func (t *tx) UpdatePayment(_ context.Context, p *models.Payment) error {
	if _, ok := t.st.payments[p.ID]; !ok {
		return domain.ErrNotFound
	}
	p.UpdatedAt = t.now()
	t.st.payments[p.ID] = *p
	return nil
}

func (t *tx) GetUser(_ context.Context, id uint) (*models.User, error) {
	return t.st.user(id)
}

func (t *tx) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return t.st.userByEmail(email), nil
}

func (t *tx) CreateInvite(_ context.Context, inv *models.AccountInvite) error {
	inv.ID = t.st.id()
	inv.CreatedAt = t.now()
	t.st.invites = append(t.st.invites, *inv)
	return nil
}

func (t *tx) GetBlock(_ context.Context, id uint) (*models.Block, error) {
	b, ok := t.st.blocks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (t *tx) CreateBlock(_ context.Context, b *models.Block) error {
	now := t.now()
	b.ID = t.st.id()
	b.CreatedAt, b.UpdatedAt = now, now
	t.st.blocks[b.ID] = *b
	return nil
}

func (t *tx) DeleteBlock(_ context.Context, id uint) error {
	if _, ok := t.st.blocks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(t.st.blocks, id)
	return nil
}

var _ domain.Tx = (*tx)(nil)
