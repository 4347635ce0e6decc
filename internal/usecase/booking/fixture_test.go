package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/infra/memstore"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
	"github.com/DamasoSilva/Platzgo-sub000/internal/timezone"
)

var saoPaulo = timezone.Location(timezone.DefaultTimezone)

// at builds a local time in São Paulo.
func at(day, hm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+hm, saoPaulo)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingSink struct {
	mu      sync.Mutex
	batches []outbox.Batch
}

func (s *recordingSink) Dispatch(b outbox.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b)
}

func (s *recordingSink) all() outbox.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out outbox.Batch
	for _, b := range s.batches {
		out.Merge(b)
	}
	return out
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	s.batches = nil
	s.mu.Unlock()
}

type limiterFunc func(key string, cost int) bool

func (f limiterFunc) Allow(_ context.Context, key string, cost int) (bool, error) {
	return f(key, cost), nil
}

type fixture struct {
	store *memstore.Store
	sink  *recordingSink
	clock *fakeClock
	env   Env

	est    models.Establishment
	court  models.Court
	court2 models.Court

	owner models.User
	alice models.User
	bob   models.User
}

// newFixture: establishment open every day 08:00–22:00, manual confirmation,
// 2h cancellation window at 50%, courts at R$100/h with 10% off from 90 min.
// The clock starts on Sunday 2026-11-01 12:00 local.
func newFixture(t *testing.T, tweak ...func(*models.Establishment)) *fixture {
	t.Helper()

	clock := &fakeClock{now: at("2026-11-01", "12:00")}
	store := memstore.New(memstore.WithClock(clock.Now))
	logger, _ := test.NewNullLogger()

	f := &fixture{store: store, sink: &recordingSink{}, clock: clock}

	f.owner = models.User{Name: "Dona", Email: "dona@arena.com", Role: string(domain.RoleOwner)}
	f.alice = models.User{Name: "Alice", Email: "alice@mail.com", Role: string(domain.RoleCustomer)}
	f.bob = models.User{Name: "Bob", Email: "bob@mail.com", Role: string(domain.RoleCustomer)}
	store.AddUser(&f.owner)
	store.AddUser(&f.alice)
	store.AddUser(&f.bob)

	f.est = models.Establishment{
		OwnerID:              f.owner.ID,
		Name:                 "Arena",
		Timezone:             timezone.DefaultTimezone,
		OpenWeekdays:         pq.Int64Array{0, 1, 2, 3, 4, 5, 6},
		OpeningTime:          "08:00",
		ClosingTime:          "22:00",
		RequiresConfirmation: true,
		PaymentProvider:      "mercadopago",
		CancelMinHours:       2,
		CancelFeePercent:     50,
	}
	for _, fn := range tweak {
		fn(&f.est)
	}
	store.AddEstablishment(&f.est)

	f.court = models.Court{EstablishmentID: f.est.ID, Name: "Quadra 1", PricePerHourCents: 10000, LongBookingDiscountPercent: 10, IsActive: true}
	f.court2 = models.Court{EstablishmentID: f.est.ID, Name: "Quadra 2", PricePerHourCents: 10000, IsActive: true}
	store.AddCourt(&f.court)
	store.AddCourt(&f.court2)

	f.env = Env{
		Store:    store,
		Intents:  f.sink,
		Clock:    clock,
		Settings: domain.DefaultSettings(),
		Log:      logger,
	}
	return f
}

func customer(u models.User) domain.Actor { return domain.Actor{ID: u.ID, Role: domain.RoleCustomer} }
func owner(u models.User) domain.Actor    { return domain.Actor{ID: u.ID, Role: domain.RoleOwner} }

func (f *fixture) create(t *testing.T, who models.User, courtID uint, day, from, to string) (*CreateReservationOutput, error) {
	t.Helper()
	return NewCreateReservation(f.env, nil).Execute(context.Background(), CreateReservationInput{
		Actor:   customer(who),
		CourtID: courtID,
		Start:   at(day, from),
		End:     at(day, to),
	})
}

// seed inserts a reservation bypassing every rule, like a legacy row would.
func (f *fixture) seed(who *models.User, courtID uint, day, from, to string, status domain.Status) models.Reservation {
	r := models.Reservation{
		CourtID:         courtID,
		StartTime:       at(day, from),
		EndTime:         at(day, to),
		Status:          string(status),
		TotalPriceCents: 10000,
	}
	if who != nil {
		r.CustomerID = &who.ID
		r.CustomerEmail = who.Email
		r.CustomerName = who.Name
	}
	f.store.AddReservation(&r)
	return r
}

func (f *fixture) reservation(t *testing.T, id uint) models.Reservation {
	t.Helper()
	r, err := f.store.GetReservation(context.Background(), id)
	require.NoError(t, err)
	return *r
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, httperr.CodeOf(err), "unexpected error: %v", err)
}

func activeCount(rs []models.Reservation) int {
	n := 0
	for _, r := range rs {
		if r.Status != string(domain.StatusCancelled) {
			n++
		}
	}
	return n
}
