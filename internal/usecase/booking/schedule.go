package booking

import (
	"context"
	"time"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/timezone"
)

type ScheduleItem struct {
	Reservation models.Reservation
	// Position in the arrival queue among overlapping PENDING reservations; 0 when not pending.
	Position int
}

type DaySchedule struct {
	CourtID      uint
	Date         string
	Reservations []ScheduleItem
	Blocks       []models.Block
}

// CourtSchedule lista o dia de uma quadra sem lock.
type CourtSchedule struct {
	store domain.Reader
}

func NewCourtSchedule(store domain.Reader) *CourtSchedule {
	return &CourtSchedule{store: store}
}

func (uc *CourtSchedule) Execute(ctx context.Context, courtID uint, date string) (out *DaySchedule, err error) {
	ctx, span := startSpan(ctx, "booking.CourtSchedule")
	defer func() { endSpan(span, err) }()

	court, err := uc.store.GetCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	est, err := uc.store.GetEstablishment(ctx, court.EstablishmentID)
	if err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation("2006-01-02", date, timezone.Location(est.Timezone))
	if err != nil {
		return nil, domain.InvalidRequest("date must be YYYY-MM-DD")
	}
	bounds := domain.DayBounds(day)

	reservations, err := uc.store.ListCourtReservations(ctx, court.ID, bounds)
	if err != nil {
		return nil, err
	}
	blocks, err := uc.store.ListCourtBlocks(ctx, court.ID, bounds)
	if err != nil {
		return nil, err
	}

	return &DaySchedule{
		CourtID:      court.ID,
		Date:         date,
		Reservations: ArrivalPositions(reservations),
		Blocks:       blocks,
	}, nil
}

// ArrivalPositions expects reservations ordered by arrival.
func ArrivalPositions(reservations []models.Reservation) []ScheduleItem {
	items := make([]ScheduleItem, len(reservations))
	for i, r := range reservations {
		items[i].Reservation = r
		if domain.Status(r.Status) != domain.StatusPending {
			continue
		}
		pos := 1
		iv := domain.ReservationInterval(&reservations[i])
		for j := 0; j < i; j++ {
			prev := &reservations[j]
			if domain.Status(prev.Status) == domain.StatusPending && domain.ReservationInterval(prev).Overlaps(iv) {
				pos++
			}
		}
		items[i].Position = pos
	}
	return items
}
