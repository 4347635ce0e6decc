package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

func (f *fixture) reschedule(who domain.Actor, id uint, day, from, to string) (*RescheduleReservationOutput, error) {
	return NewRescheduleReservation(f.env).Execute(context.Background(), RescheduleReservationInput{
		Actor:         who,
		ReservationID: id,
		Start:         at(day, from),
		End:           at(day, to),
	})
}

func TestRescheduleReservation_MovesAndLinks(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusConfirmed)
	pay := models.Payment{ReservationID: orig.ID, Provider: "mercadopago", ProviderPaymentID: "mp-1", Status: string(domain.PaymentPaid), AmountCents: 10000}
	f.store.AddPayment(&pay)

	out, err := f.reschedule(customer(f.alice), orig.ID, "2026-11-03", "18:00", "19:30")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), out.Reservation.Status)
	require.NotNil(t, out.Reservation.RescheduledFromID)
	assert.Equal(t, orig.ID, *out.Reservation.RescheduledFromID)
	assert.Equal(t, int64(13500), out.Reservation.TotalPriceCents)

	old := f.reservation(t, orig.ID)
	assert.Equal(t, string(domain.StatusCancelled), old.Status)
	assert.Equal(t, ReasonRescheduled, *old.CancelReason)

	// preço mudou: o pagamento antigo é devolvido e um novo checkout é aberto
	payments := f.store.Payments()
	require.Len(t, payments, 2)
	assert.Equal(t, orig.ID, payments[0].ReservationID)
	assert.Equal(t, string(domain.PaymentRefunded), payments[0].Status)
	assert.Equal(t, out.Reservation.ID, payments[1].ReservationID)
	assert.Equal(t, string(domain.PaymentPending), payments[1].Status)
	assert.Equal(t, int64(13500), payments[1].AmountCents)

	batch := f.sink.all()
	require.Len(t, batch.Refunds, 1)
	assert.Equal(t, int64(10000), batch.Refunds[0].AmountCents)
	assert.Equal(t, "mp-1", batch.Refunds[0].ProviderPaymentID)
	require.Len(t, batch.Payments, 1)
	assert.Equal(t, int64(13500), batch.Payments[0].AmountCents)
	assert.Equal(t, payments[1].ID, batch.Payments[0].PaymentID)
}

func TestRescheduleReservation_SamePriceCarriesPayment(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusConfirmed)
	pay := models.Payment{ReservationID: orig.ID, Status: string(domain.PaymentPaid), AmountCents: 10000}
	f.store.AddPayment(&pay)

	out, err := f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "14:00", "15:00")
	require.NoError(t, err)

	// confirmação manual: continua pendente, com o pagamento já quitado
	assert.Equal(t, string(domain.StatusPending), out.Reservation.Status)
	payments := f.store.Payments()
	require.Len(t, payments, 1)
	assert.Equal(t, out.Reservation.ID, payments[0].ReservationID)
	assert.Equal(t, string(domain.PaymentPaid), payments[0].Status)
	assert.Empty(t, f.sink.all().Refunds)

	_, err = f.confirm(owner(f.owner), out.Reservation.ID)
	require.NoError(t, err)
}

func TestRescheduleReservation_PaidAutoConfirmsWithoutManualConfirmation(t *testing.T) {
	f := onlineFixture(t)
	orig := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusConfirmed)
	pay := models.Payment{ReservationID: orig.ID, Status: string(domain.PaymentPaid), AmountCents: 10000}
	f.store.AddPayment(&pay)

	out, err := f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "14:00", "15:00")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), out.Reservation.Status)
	assert.Equal(t, string(domain.StatusConfirmed), f.reservation(t, out.Reservation.ID).Status)

	payments := f.store.Payments()
	require.Len(t, payments, 1)
	assert.Equal(t, out.Reservation.ID, payments[0].ReservationID)
	assert.Equal(t, string(domain.PaymentPaid), payments[0].Status)
}

func TestRescheduleReservation_PendingCheckoutIsReopenedAtNewPrice(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusPending)
	pay := models.Payment{ReservationID: orig.ID, Status: string(domain.PaymentPending), AmountCents: 10000}
	f.store.AddPayment(&pay)

	out, err := f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "14:00", "16:00")
	require.NoError(t, err)

	payments := f.store.Payments()
	require.Len(t, payments, 2)
	assert.Equal(t, string(domain.PaymentCancelled), payments[0].Status)
	assert.Equal(t, out.Reservation.ID, payments[1].ReservationID)
	assert.Equal(t, out.Reservation.TotalPriceCents, payments[1].AmountCents)
	assert.Empty(t, f.sink.all().Refunds)
}

func TestRescheduleReservation_AtMostOnce(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusConfirmed)

	_, err := f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "14:00", "15:00")
	require.NoError(t, err)

	_, err = f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "16:00", "17:00")
	requireCode(t, err, domain.CodeAlreadyRescheduled)
}

func TestRescheduleReservation_OverlappingItsOwnSlot(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusConfirmed)

	_, err := f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "10:30", "11:30")
	assert.NoError(t, err)
}

func TestRescheduleReservation_Validation(t *testing.T) {
	f := newFixture(t)
	orig := f.seed(&f.alice, f.court.ID, "2026-11-02", "10:00", "11:00", domain.StatusConfirmed)
	f.seed(&f.bob, f.court.ID, "2026-11-02", "14:00", "15:00", domain.StatusConfirmed)

	_, err := f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "14:15", "15:15")
	requireCode(t, err, domain.CodeInvalidInterval)

	_, err = f.reschedule(customer(f.alice), orig.ID, "2026-11-01", "09:00", "10:00")
	requireCode(t, err, domain.CodeInvalidInterval)

	_, err = f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "14:30", "15:30")
	requireCode(t, err, domain.CodeSlotReserved)

	_, err = f.reschedule(customer(f.alice), orig.ID, "2026-11-02", "21:30", "22:30")
	requireCode(t, err, domain.CodeOutsideOperatingHours)

	_, err = f.reschedule(customer(f.bob), orig.ID, "2026-11-02", "16:00", "17:00")
	requireCode(t, err, domain.CodePermissionDenied)

	// nada mudou
	assert.Equal(t, string(domain.StatusConfirmed), f.reservation(t, orig.ID).Status)
}

func TestRescheduleReservation_PastOrCancelled(t *testing.T) {
	f := newFixture(t)
	past := f.seed(&f.alice, f.court.ID, "2026-11-01", "09:00", "10:00", domain.StatusConfirmed)
	cancelled := f.seed(&f.alice, f.court.ID, "2026-11-03", "09:00", "10:00", domain.StatusCancelled)

	_, err := f.reschedule(customer(f.alice), past.ID, "2026-11-02", "16:00", "17:00")
	requireCode(t, err, domain.CodeInvalidState)

	_, err = f.reschedule(customer(f.alice), cancelled.ID, "2026-11-02", "16:00", "17:00")
	requireCode(t, err, domain.CodeInvalidState)
}
