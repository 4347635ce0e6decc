package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

var t0 = time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)

func reservation(courtID uint, start time.Time, minutes int, status domain.Status) *models.Reservation {
	return &models.Reservation{
		CourtID:   courtID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Status:    string(status),
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := New()
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		require.NoError(t, tx.CreateReservation(ctx, reservation(1, t0, 60, domain.StatusPending)))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Reservations())
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	s := New()

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		return tx.CreateReservation(ctx, reservation(1, t0, 60, domain.StatusPending))
	})

	require.NoError(t, err)
	assert.Len(t, s.Reservations(), 1)
}

func TestWithinTx_CancelledContextRollsBack(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		require.NoError(t, tx.CreateReservation(ctx, reservation(1, t0, 60, domain.StatusPending)))
		cancel()
		return nil
	})

	assert.True(t, httperr.IsBusiness(err, domain.CodeConflict))
	assert.Empty(t, s.Reservations())
}

func TestWithinTx_LockWaitTimesOut(t *testing.T) {
	s := New()
	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = s.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error { return nil })

	assert.True(t, httperr.IsBusiness(err, domain.CodeConflict))
	close(release)
	<-done
}

func TestCreateReservation_UniqueRescheduleLink(t *testing.T) {
	s := New()
	orig := reservation(1, t0, 60, domain.StatusConfirmed)
	s.AddReservation(orig)

	first := reservation(1, t0.Add(2*time.Hour), 60, domain.StatusPending)
	first.RescheduledFromID = &orig.ID
	second := reservation(1, t0.Add(4*time.Hour), 60, domain.StatusPending)
	second.RescheduledFromID = &orig.ID

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		return tx.CreateReservation(ctx, first)
	})
	require.NoError(t, err)

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		return tx.CreateReservation(ctx, second)
	})
	assert.True(t, httperr.IsBusiness(err, domain.CodeAlreadyRescheduled))
}

func TestListOverlapping_FiltersAndOrders(t *testing.T) {
	clock := t0.Add(-time.Hour)
	s := New(WithClock(func() time.Time { return clock }))

	customer := uint(42)
	a := reservation(1, t0, 60, domain.StatusPending)
	a.CreatedAt = clock.Add(2 * time.Minute)
	b := reservation(1, t0.Add(30*time.Minute), 60, domain.StatusPending)
	b.CreatedAt = clock.Add(time.Minute)
	b.CustomerID = &customer
	cancelled := reservation(1, t0, 60, domain.StatusCancelled)
	otherCourt := reservation(2, t0, 60, domain.StatusPending)
	touching := reservation(1, t0.Add(time.Hour+30*time.Minute), 60, domain.StatusPending)
	for _, r := range []*models.Reservation{a, b, cancelled, otherCourt, touching} {
		s.AddReservation(r)
	}

	probe := domain.Interval{Start: t0, End: t0.Add(90 * time.Minute)}

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		got, err := tx.ListOverlapping(ctx, domain.OverlapQuery{CourtID: 1, Interval: probe, Statuses: domain.ActiveStatuses})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, b.ID, got[0].ID)
		assert.Equal(t, a.ID, got[1].ID)

		mine, err := tx.ListOverlapping(ctx, domain.OverlapQuery{CustomerID: customer, Interval: probe, Statuses: domain.ActiveStatuses})
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		rest, err := tx.ListOverlapping(ctx, domain.OverlapQuery{
			CourtID: 1, Interval: probe, Statuses: domain.ActiveStatuses, ExcludeIDs: []uint{b.ID},
		})
		require.NoError(t, err)
		assert.Len(t, rest, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestGetPaymentByReservation_NoneIsNil(t *testing.T) {
	s := New()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		p, err := tx.GetPaymentByReservation(ctx, 99)
		assert.NoError(t, err)
		assert.Nil(t, p)
		return nil
	})
	require.NoError(t, err)
}
