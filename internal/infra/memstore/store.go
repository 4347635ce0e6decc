package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

// Store keeps everything in memory. Transactions run one at a time on a
// private copy of the state and replace it only on commit.
type Store struct {
	sem chan struct{}
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		sem: make(chan struct{}, 1),
		st:  newState(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return domain.ErrConflict
	}
	defer func() { <-s.sem }()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &tx{st: work, now: s.now}); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return domain.ErrConflict
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// ===============================
// Reader
// ===============================

func (s *Store) GetCourt(_ context.Context, id uint) (*models.Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.court(id)
}

func (s *Store) GetEstablishment(_ context.Context, id uint) (*models.Establishment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.establishment(id)
}

func (s *Store) GetReservation(_ context.Context, id uint) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.reservation(id)
}

func (s *Store) GetPayment(_ context.Context, id uint) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.payment(id)
}

func (s *Store) ListCourtReservations(_ context.Context, courtID uint, iv domain.Interval) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.overlapping(domain.OverlapQuery{
		CourtID:  courtID,
		Interval: iv,
		Statuses: domain.ActiveStatuses,
	}), nil
}

func (s *Store) ListCourtBlocks(_ context.Context, courtID uint, iv domain.Interval) ([]models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.blocksOverlapping(courtID, iv), nil
}

// ===============================
// Snapshot helpers (tests)
// ===============================

// Reservations returns every stored reservation ordered by id.
func (s *Store) Reservations() []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Reservation, 0, len(s.st.reservations))
	for _, r := range s.st.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Payments() []models.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Payment, 0, len(s.st.payments))
	for _, p := range s.st.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Invites() []models.AccountInvite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AccountInvite(nil), s.st.invites...)
}

var _ domain.Store = (*Store)(nil)
