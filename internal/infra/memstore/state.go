package memstore

import (
	"sort"
	"strings"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

type state struct {
	nextID uint

	establishments map[uint]models.Establishment
	courts         map[uint]models.Court
	users          map[uint]models.User
	reservations   map[uint]models.Reservation
	blocks         map[uint]models.Block
	payments       map[uint]models.Payment

	weekdayHours []models.WeekdayHours
	holidays     []models.Holiday
	passes       []models.MonthlyPass
	invites      []models.AccountInvite
}

func newState() *state {
	return &state{
		establishments: map[uint]models.Establishment{},
		courts:         map[uint]models.Court{},
		users:          map[uint]models.User{},
		reservations:   map[uint]models.Reservation{},
		blocks:         map[uint]models.Block{},
		payments:       map[uint]models.Payment{},
	}
}

func (s *state) clone() *state {
	c := &state{
		nextID:         s.nextID,
		establishments: cloneMap(s.establishments),
		courts:         cloneMap(s.courts),
		users:          cloneMap(s.users),
		reservations:   cloneMap(s.reservations),
		blocks:         cloneMap(s.blocks),
		payments:       cloneMap(s.payments),
		weekdayHours:   append([]models.WeekdayHours(nil), s.weekdayHours...),
		holidays:       append([]models.Holiday(nil), s.holidays...),
		passes:         append([]models.MonthlyPass(nil), s.passes...),
		invites:        append([]models.AccountInvite(nil), s.invites...),
	}
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

func (s *state) court(id uint) (*models.Court, error) {
	c, ok := s.courts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *state) establishment(id uint) (*models.Establishment, error) {
	e, ok := s.establishments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (s *state) user(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *state) reservation(id uint) (*models.Reservation, error) {
	r, ok := s.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *state) payment(id uint) (*models.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *state) overlapping(q domain.OverlapQuery) []models.Reservation {
	var out []models.Reservation
	for _, r := range s.reservations {
		if q.CourtID != 0 && r.CourtID != q.CourtID {
			continue
		}
		if q.CustomerID != 0 && (r.CustomerID == nil || *r.CustomerID != q.CustomerID) {
			continue
		}
		if !hasStatus(q.Statuses, r.Status) || excluded(q.ExcludeIDs, r.ID) {
			continue
		}
		if !domain.ReservationInterval(&r).Overlaps(q.Interval) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *state) blocksOverlapping(courtID uint, iv domain.Interval) []models.Block {
	var out []models.Block
	for _, b := range s.blocks {
		if b.CourtID != courtID {
			continue
		}
		if (domain.Interval{Start: b.StartTime, End: b.EndTime}).Overlaps(iv) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (s *state) userByEmail(email string) *models.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u
		}
	}
	return nil
}

func hasStatus(statuses []domain.Status, status string) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if string(s) == status {
			return true
		}
	}
	return false
}

func excluded(ids []uint, id uint) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
