package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

func TestCreateReservation_ScenarioPendingThenConflictThenCascade(t *testing.T) {
	f := newFixture(t)

	first, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "10:00", "11:00")
	require.NoError(t, err)
	require.Len(t, first.Reservations, 1)
	assert.Equal(t, string(domain.StatusPending), first.Reservations[0].Status)
	assert.Equal(t, int64(10000), first.Reservations[0].TotalPriceCents)

	_, err = f.create(t, f.bob, f.court.ID, "2026-11-02", "10:30", "11:30")
	requireCode(t, err, domain.CodeSlotReserved)

	// Competidor pendente que entrou antes das regras atuais.
	sibling := f.seed(&f.bob, f.court.ID, "2026-11-02", "10:30", "11:30", domain.StatusPending)

	out, err := NewConfirmReservation(f.env).Execute(context.Background(), ConfirmReservationInput{
		Actor:         owner(f.owner),
		ReservationID: first.Reservations[0].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), out.Reservation.Status)
	require.Len(t, out.AutoCancelled, 1)
	assert.Equal(t, sibling.ID, out.AutoCancelled[0].ReservationID)

	assert.Equal(t, string(domain.StatusCancelled), f.reservation(t, sibling.ID).Status)
}

func TestCreateReservation_OperatingHoursBoundary(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "08:00", "09:00")
	assert.NoError(t, err)

	_, err = f.create(t, f.bob, f.court2.ID, "2026-11-02", "07:59", "09:00")
	requireCode(t, err, domain.CodeOutsideOperatingHours)

	_, err = f.create(t, f.bob, f.court2.ID, "2026-11-02", "21:00", "22:00")
	assert.NoError(t, err)
}

func TestCreateReservation_SeriesIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.store.AddBlock(&models.Block{
		CourtID:   f.court.ID,
		StartTime: at("2026-11-16", "09:00"),
		EndTime:   at("2026-11-16", "12:00"),
		Note:      "manutenção",
	})

	_, err := NewCreateReservation(f.env, nil).Execute(context.Background(), CreateReservationInput{
		Actor:       customer(f.alice),
		CourtID:     f.court.ID,
		Start:       at("2026-11-02", "10:00"),
		End:         at("2026-11-02", "11:00"),
		RepeatWeeks: 3,
	})

	requireCode(t, err, domain.CodeSlotBlocked)
	assert.Empty(t, f.store.Reservations())
	assert.Empty(t, f.sink.all().Notifications)
}

func TestCreateReservation_SeriesStopsOnClosedHoliday(t *testing.T) {
	f := newFixture(t)
	f.store.AddHoliday(&models.Holiday{EstablishmentID: f.est.ID, Date: "2026-11-23", Note: "Feriado local"})

	_, err := NewCreateReservation(f.env, nil).Execute(context.Background(), CreateReservationInput{
		Actor:       customer(f.alice),
		CourtID:     f.court.ID,
		Start:       at("2026-11-02", "10:00"),
		End:         at("2026-11-02", "11:00"),
		RepeatWeeks: 3,
	})

	requireCode(t, err, domain.CodeEstablishmentClosed)
	assert.Equal(t, "Feriado local", httperr.DetailOf(err))
	assert.Empty(t, f.store.Reservations())
}

func TestCreateReservation_WeeklySeries(t *testing.T) {
	f := newFixture(t)

	out, err := NewCreateReservation(f.env, nil).Execute(context.Background(), CreateReservationInput{
		Actor:       customer(f.alice),
		CourtID:     f.court.ID,
		Start:       at("2026-11-02", "19:00"),
		End:         at("2026-11-02", "20:00"),
		RepeatWeeks: 3,
	})
	require.NoError(t, err)
	require.Len(t, out.Reservations, 4)
	require.NotNil(t, out.SeriesID)

	for k, r := range out.Reservations {
		assert.Equal(t, at("2026-11-02", "19:00").AddDate(0, 0, 7*k), r.StartTime)
		assert.Equal(t, *out.SeriesID, *r.SeriesID)
	}
	assert.Len(t, f.sink.all().Emails, 4)
}

func TestCreateReservation_RepeatCap(t *testing.T) {
	f := newFixture(t)

	_, err := NewCreateReservation(f.env, nil).Execute(context.Background(), CreateReservationInput{
		Actor:       customer(f.alice),
		CourtID:     f.court.ID,
		Start:       at("2026-11-02", "10:00"),
		End:         at("2026-11-02", "11:00"),
		RepeatWeeks: 4,
	})
	requireCode(t, err, domain.CodeInvalidRequest)
}

func TestCreateReservation_RejectsPastAndInvalidIntervals(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(t, f.alice, f.court.ID, "2026-11-01", "10:00", "11:00")
	requireCode(t, err, domain.CodeInvalidInterval)

	_, err = f.create(t, f.alice, f.court.ID, "2026-11-02", "11:00", "10:00")
	requireCode(t, err, domain.CodeInvalidInterval)
}

func TestCreateReservation_DoubleBookingAcrossCourts(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "10:00", "11:00")
	require.NoError(t, err)

	_, err = f.create(t, f.alice, f.court2.ID, "2026-11-02", "10:30", "11:30")
	requireCode(t, err, domain.CodeDoubleBooking)

	_, err = f.create(t, f.alice, f.court2.ID, "2026-11-02", "11:00", "12:00")
	assert.NoError(t, err)
}

func TestCreateReservation_Buffer(t *testing.T) {
	f := newFixture(t, func(e *models.Establishment) { e.BufferMinutes = 15 })

	_, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "10:00", "11:00")
	require.NoError(t, err)

	_, err = f.create(t, f.bob, f.court.ID, "2026-11-02", "11:00", "12:00")
	requireCode(t, err, domain.CodeSlotReserved)

	_, err = f.create(t, f.bob, f.court.ID, "2026-11-02", "11:30", "12:30")
	assert.NoError(t, err)
}

func TestCreateReservation_BlockWithBuffer(t *testing.T) {
	f := newFixture(t, func(e *models.Establishment) { e.BufferMinutes = 15 })
	f.store.AddBlock(&models.Block{
		CourtID:   f.court.ID,
		StartTime: at("2026-11-02", "12:00"),
		EndTime:   at("2026-11-02", "13:00"),
	})

	_, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "11:00", "12:00")
	requireCode(t, err, domain.CodeSlotBlocked)

	_, err = f.create(t, f.alice, f.court.ID, "2026-11-02", "10:30", "11:30")
	assert.NoError(t, err)
}

func TestCreateReservation_PricingDiscount(t *testing.T) {
	f := newFixture(t)

	out, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "10:00", "11:30")
	require.NoError(t, err)
	assert.Equal(t, int64(13500), out.Reservations[0].TotalPriceCents)
}

func TestCreateReservation_MonthlyPass(t *testing.T) {
	f := newFixture(t)
	f.store.AddPass(&models.MonthlyPass{
		CourtID:    f.court.ID,
		CustomerID: f.bob.ID,
		Month:      "2026-11",
		Weekday:    1,
		StartTime:  "10:00",
		EndTime:    "12:00",
		Status:     string(domain.PassActive),
	})

	_, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "11:00", "12:30")
	requireCode(t, err, domain.CodeSlotReservedByPass)

	_, err = f.create(t, f.alice, f.court.ID, "2026-11-02", "12:00", "13:00")
	assert.NoError(t, err)

	free, err := f.create(t, f.bob, f.court.ID, "2026-11-02", "10:00", "11:00")
	require.NoError(t, err)
	assert.Zero(t, free.Reservations[0].TotalPriceCents)

	// outro dia da semana: passe não se aplica
	_, err = f.create(t, f.alice, f.court.ID, "2026-11-03", "10:00", "11:00")
	assert.NoError(t, err)
}

func TestCreateReservation_StatusAndPayment(t *testing.T) {
	t.Run("auto confirmed", func(t *testing.T) {
		f := newFixture(t, func(e *models.Establishment) { e.RequiresConfirmation = false })

		out, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "10:00", "11:00")
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusConfirmed), out.Reservations[0].Status)
		assert.NotNil(t, out.Reservations[0].ConfirmedAt)
		assert.Empty(t, out.Payments)
	})

	t.Run("online payment keeps it pending", func(t *testing.T) {
		f := newFixture(t, func(e *models.Establishment) {
			e.RequiresConfirmation = false
			e.OnlinePaymentRequired = true
		})

		out, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "10:00", "11:00")
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusPending), out.Reservations[0].Status)
		require.Len(t, out.Payments, 1)
		assert.Equal(t, string(domain.PaymentPending), out.Payments[0].Status)
		assert.Equal(t, int64(10000), out.Payments[0].AmountCents)

		starts := f.sink.all().Payments
		require.Len(t, starts, 1)
		assert.Equal(t, out.Payments[0].ID, starts[0].PaymentID)
		assert.Equal(t, "mercadopago", starts[0].Provider)
		assert.Equal(t, f.alice.Email, starts[0].PayerEmail)
	})

	t.Run("owner is notified and customer emailed", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.create(t, f.alice, f.court.ID, "2026-11-02", "10:00", "11:00")
		require.NoError(t, err)

		b := f.sink.all()
		require.Len(t, b.Notifications, 1)
		assert.Equal(t, f.owner.ID, b.Notifications[0].UserID)
		require.Len(t, b.Emails, 1)
		assert.Equal(t, fmt.Sprintf("reservation:%d:pending", out.Reservations[0].ID), b.Emails[0].DedupeKey)
		assert.Len(t, b.Audits, 1)
	})
}

func TestCreateReservation_InactiveCourt(t *testing.T) {
	f := newFixture(t)
	closed := models.Court{EstablishmentID: f.est.ID, Name: "Quadra 3", PricePerHourCents: 1, InactiveReason: "reforma"}
	f.store.AddCourt(&closed)

	_, err := f.create(t, f.alice, closed.ID, "2026-11-02", "10:00", "11:00")
	requireCode(t, err, domain.CodeCourtInactive)
	assert.Equal(t, "reforma", httperr.DetailOf(err))
}

func TestCreateReservation_OnlyCustomers(t *testing.T) {
	f := newFixture(t)

	_, err := NewCreateReservation(f.env, nil).Execute(context.Background(), CreateReservationInput{
		Actor:   owner(f.owner),
		CourtID: f.court.ID,
		Start:   at("2026-11-02", "10:00"),
		End:     at("2026-11-02", "11:00"),
	})
	requireCode(t, err, domain.CodePermissionDenied)
}

func TestCreateReservation_RateLimitCountsWholeBatch(t *testing.T) {
	f := newFixture(t)

	var gotKey string
	var gotCost int
	limiter := limiterFunc(func(key string, cost int) bool {
		gotKey, gotCost = key, cost
		return false
	})

	_, err := NewCreateReservation(f.env, limiter).Execute(context.Background(), CreateReservationInput{
		Actor:       customer(f.alice),
		CourtID:     f.court.ID,
		Start:       at("2026-11-02", "10:00"),
		End:         at("2026-11-02", "11:00"),
		RepeatWeeks: 2,
	})

	requireCode(t, err, domain.CodeRateLimited)
	assert.Equal(t, fmt.Sprintf("reservations:user:%d", f.alice.ID), gotKey)
	assert.Equal(t, 3, gotCost)
	assert.Empty(t, f.store.Reservations())
}

func TestCreateReservation_ConcurrentRequestsNeverDoubleBook(t *testing.T) {
	f := newFixture(t)

	const perSlot = 8
	slots := [][2]string{{"10:00", "11:00"}, {"10:30", "11:30"}, {"15:00", "16:00"}}

	users := make([]models.User, 0, perSlot*len(slots))
	for i := 0; i < perSlot*len(slots); i++ {
		u := models.User{Name: fmt.Sprintf("u%d", i), Email: fmt.Sprintf("u%d@mail.com", i)}
		f.store.AddUser(&u)
		users = append(users, u)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u models.User) {
			defer wg.Done()
			slot := slots[i%len(slots)]
			_, errs[i] = f.create(t, u, f.court.ID, "2026-11-02", slot[0], slot[1])
		}(i, u)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		code := httperr.CodeOf(err)
		assert.Contains(t, []string{domain.CodeSlotReserved, domain.CodeConflict}, code)
	}
	// 10:00 e 10:30 disputam o mesmo espaço; 15:00 é independente.
	assert.Equal(t, 2, ok)

	all := f.store.Reservations()
	assert.Equal(t, 2, activeCount(all))
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.False(t,
				domain.ReservationInterval(&all[i]).Overlaps(domain.ReservationInterval(&all[j])),
				"reservations %d and %d overlap", all[i].ID, all[j].ID)
		}
	}
}
