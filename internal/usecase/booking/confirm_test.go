package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

func (f *fixture) confirm(who domain.Actor, id uint) (*ConfirmReservationOutput, error) {
	return NewConfirmReservation(f.env).Execute(context.Background(), ConfirmReservationInput{Actor: who, ReservationID: id})
}

func TestConfirmReservation_CascadeCompleteness(t *testing.T) {
	f := newFixture(t)

	target := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)
	overlapA := f.seed(&f.bob, f.court.ID, "2026-11-02", "10:30", "11:30", domain.StatusPending)
	overlapB := f.seed(nil, f.court.ID, "2026-11-02", "09:00", "10:30", domain.StatusPending)
	touching := f.seed(&f.bob, f.court.ID, "2026-11-02", "11:00", "12:00", domain.StatusPending)
	otherCourt := f.seed(&f.bob, f.court2.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)

	out, err := f.confirm(owner(f.owner), target.ID)
	require.NoError(t, err)

	require.Len(t, out.AutoCancelled, 2)
	assert.Equal(t, overlapA.ID, out.AutoCancelled[0].ReservationID)
	assert.Equal(t, 1, out.AutoCancelled[0].Position)
	assert.Equal(t, overlapB.ID, out.AutoCancelled[1].ReservationID)
	assert.Equal(t, 2, out.AutoCancelled[1].Position)

	for _, id := range []uint{overlapA.ID, overlapB.ID} {
		r := f.reservation(t, id)
		assert.Equal(t, string(domain.StatusCancelled), r.Status)
		require.NotNil(t, r.CancelReason)
		assert.Equal(t, ReasonSlotTaken, *r.CancelReason)
	}
	assert.Equal(t, string(domain.StatusPending), f.reservation(t, touching.ID).Status)
	assert.Equal(t, string(domain.StatusPending), f.reservation(t, otherCourt.ID).Status)
	assert.Equal(t, string(domain.StatusConfirmed), f.reservation(t, target.ID).Status)

	b := f.sink.all()
	var summary, autoCancelled int
	for _, n := range b.Notifications {
		switch n.Kind {
		case KindCascadeSummary:
			summary++
			assert.Equal(t, f.owner.ID, n.UserID)
		case KindReservationAutoCancelled:
			autoCancelled++
			assert.Equal(t, f.bob.ID, n.UserID)
		}
	}
	assert.Equal(t, 1, summary)
	assert.Equal(t, 1, autoCancelled)
}

func TestConfirmReservation_NoSummaryWithoutCompetitors(t *testing.T) {
	f := newFixture(t)
	target := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)

	out, err := f.confirm(owner(f.owner), target.ID)
	require.NoError(t, err)
	assert.Empty(t, out.AutoCancelled)

	for _, n := range f.sink.all().Notifications {
		assert.NotEqual(t, KindCascadeSummary, n.Kind)
	}
}

func TestConfirmReservation_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	target := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)

	_, err := f.confirm(owner(f.bob), target.ID)
	requireCode(t, err, domain.CodePermissionDenied)

	_, err = f.confirm(customer(f.owner), target.ID)
	requireCode(t, err, domain.CodePermissionDenied)

	_, err = f.confirm(domain.SystemActor, target.ID)
	assert.NoError(t, err)
}

func TestConfirmReservation_OnlyFromPending(t *testing.T) {
	f := newFixture(t)
	target := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)

	_, err := f.confirm(owner(f.owner), target.ID)
	require.NoError(t, err)

	_, err = f.confirm(owner(f.owner), target.ID)
	requireCode(t, err, domain.CodeInvalidState)
}

func TestConfirmReservation_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.confirm(owner(f.owner), 9999)
	requireCode(t, err, domain.CodeNotFound)
}

func TestConfirmReservation_PaymentNotReady(t *testing.T) {
	f := newFixture(t)
	target := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)
	f.store.AddPayment(&models.Payment{ReservationID: target.ID, Status: string(domain.PaymentPending), AmountCents: 10000})

	_, err := f.confirm(owner(f.owner), target.ID)
	requireCode(t, err, domain.CodePaymentNotReady)
	assert.Equal(t, string(domain.StatusPending), f.reservation(t, target.ID).Status)
}

func TestConfirmReservation_AuthorizedPaymentBecomesPaid(t *testing.T) {
	f := newFixture(t)
	target := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)
	pay := models.Payment{ReservationID: target.ID, Status: string(domain.PaymentAuthorized), AmountCents: 10000}
	f.store.AddPayment(&pay)

	competitor := f.seed(&f.bob, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)
	competitorPay := models.Payment{
		ReservationID:     competitor.ID,
		Provider:          "mercadopago",
		Status:            string(domain.PaymentPaid),
		AmountCents:       10000,
		ProviderPaymentID: "mp-77",
	}
	f.store.AddPayment(&competitorPay)

	out, err := f.confirm(owner(f.owner), target.ID)
	require.NoError(t, err)
	require.Len(t, out.AutoCancelled, 1)
	assert.True(t, out.AutoCancelled[0].Refunded)

	payments := map[uint]models.Payment{}
	for _, p := range f.store.Payments() {
		payments[p.ID] = p
	}
	assert.Equal(t, string(domain.PaymentPaid), payments[pay.ID].Status)
	assert.Equal(t, string(domain.PaymentRefunded), payments[competitorPay.ID].Status)

	assert.Equal(t, []outbox.Refund{{
		PaymentID:         competitorPay.ID,
		Provider:          "mercadopago",
		ProviderPaymentID: "mp-77",
		AmountCents:       10000,
	}}, f.sink.all().Refunds)
}

func TestConfirmReservation_ConfirmedOverlapWins(t *testing.T) {
	f := newFixture(t)
	f.seed(&f.bob, f.court.ID, "2026-11-02", "10:30", "11:30", domain.StatusConfirmed)
	target := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)

	_, err := f.confirm(owner(f.owner), target.ID)
	requireCode(t, err, domain.CodeSlotReserved)
	assert.Empty(t, f.sink.all().Notifications)
}
