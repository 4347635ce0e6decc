package memstore

import "github.com/DamasoSilva/Platzgo-sub000/internal/models"

// Add* insert fixtures directly, outside any transaction, and assign ids.

func (s *Store) AddEstablishment(e *models.Establishment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.st.id()
	s.st.establishments[e.ID] = *e
}

func (s *Store) AddCourt(c *models.Court) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.st.id()
	s.st.courts[c.ID] = *c
}

func (s *Store) AddUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.st.id()
	s.st.users[u.ID] = *u
}

func (s *Store) AddWeekdayHours(wh *models.WeekdayHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wh.ID = s.st.id()
	s.st.weekdayHours = append(s.st.weekdayHours, *wh)
}

func (s *Store) AddHoliday(h *models.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.st.id()
	s.st.holidays = append(s.st.holidays, *h)
}

func (s *Store) AddPass(p *models.MonthlyPass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.st.id()
	s.st.passes = append(s.st.passes, *p)
}

func (s *Store) AddBlock(b *models.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.st.id()
	s.st.blocks[b.ID] = *b
}

func (s *Store) AddReservation(r *models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.st.id()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.st.reservations[r.ID] = *r
}

func (s *Store) AddPayment(p *models.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.st.id()
	s.st.payments[p.ID] = *p
}
