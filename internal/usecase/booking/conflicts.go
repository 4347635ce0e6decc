package booking

import (
	"context"
	"time"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

// ClaimRequest describes an interval someone wants on a court.
// Interval is raw (unbuffered) and expressed in the establishment's location.
type ClaimRequest struct {
	Court         *models.Court
	Establishment *models.Establishment
	Interval      domain.Interval
	CustomerID    uint
	ExcludeIDs    []uint
}

type ClaimResult struct {
	// PassCovered is set when the customer's own active pass contains the interval.
	PassCovered bool
}

// ConflictChecker must run with the court row locked.
type ConflictChecker struct{}

func (ConflictChecker) Check(ctx context.Context, tx domain.Tx, req ClaimRequest) (ClaimResult, error) {
	var res ClaimResult
	buffer := req.Establishment.BufferMinutes

	// Buffers on both sides: raw intervals overlapping the probe widened by 2×buffer.
	taken, err := tx.ListOverlapping(ctx, domain.OverlapQuery{
		CourtID:    req.Court.ID,
		Interval:   req.Interval.ExpandWithBuffer(2 * buffer),
		Statuses:   domain.ActiveStatuses,
		ExcludeIDs: req.ExcludeIDs,
	})
	if err != nil {
		return res, err
	}
	if len(taken) > 0 {
		return res, domain.ErrSlotReserved
	}

	blocks, err := tx.ListBlocksOverlapping(ctx, req.Court.ID, req.Interval.ExpandWithBuffer(buffer))
	if err != nil {
		return res, err
	}
	if len(blocks) > 0 {
		return res, domain.ErrSlotBlocked
	}

	passes, err := tx.ListActivePasses(
		ctx,
		req.Court.ID,
		domain.MonthKey(req.Interval.Start),
		int(req.Interval.Start.Weekday()),
	)
	if err != nil {
		return res, err
	}
	for _, p := range passes {
		slot, ok := passSlot(p, req.Interval.Start)
		if !ok || !slot.Overlaps(req.Interval) {
			continue
		}
		if req.CustomerID == 0 || p.CustomerID != req.CustomerID {
			return res, domain.ErrSlotReservedByPass
		}
		if slot.Contains(req.Interval) {
			res.PassCovered = true
		}
	}

	return res, nil
}

// passSlot anchors the pass window on day.
func passSlot(p models.MonthlyPass, day time.Time) (domain.Interval, bool) {
	start, err := domain.ParseClock(p.StartTime)
	if err != nil {
		return domain.Interval{}, false
	}
	end, err := domain.ParseClock(p.EndTime)
	if err != nil || end <= start {
		return domain.Interval{}, false
	}
	return domain.Interval{Start: start.On(day), End: end.On(day)}, true
}

// ===============================
// Occurrence evaluation
// ===============================

type occurrence struct {
	ClaimRequest
	Calendar domain.Calendar
}

// evaluate runs the calendar, claim and double-booking checks and prices the interval.
func evaluate(ctx context.Context, tx domain.Tx, settings domain.Settings, oc occurrence) (int64, error) {
	if _, err := oc.Calendar.CheckInterval(oc.Interval); err != nil {
		return 0, err
	}

	claim, err := ConflictChecker{}.Check(ctx, tx, oc.ClaimRequest)
	if err != nil {
		return 0, err
	}

	if oc.CustomerID != 0 {
		mine, err := tx.ListOverlapping(ctx, domain.OverlapQuery{
			CustomerID: oc.CustomerID,
			Interval:   oc.Interval,
			Statuses:   domain.ActiveStatuses,
			ExcludeIDs: oc.ExcludeIDs,
		})
		if err != nil {
			return 0, err
		}
		if len(mine) > 0 {
			return 0, domain.ErrDoubleBooking
		}
	}

	if claim.PassCovered {
		return 0, nil
	}
	return domain.PriceCents(
		oc.Court.PricePerHourCents,
		oc.Interval.Minutes(),
		oc.Court.LongBookingDiscountPercent,
		settings.LongBookingThresholdMinutes,
	), nil
}

func loadCalendar(ctx context.Context, tx domain.Tx, est *models.Establishment, ivs []domain.Interval) (domain.Calendar, error) {
	weekdays, err := tx.ListWeekdayHours(ctx, est.ID)
	if err != nil {
		return domain.Calendar{}, err
	}

	from, to := domain.DateKey(ivs[0].Start), domain.DateKey(ivs[len(ivs)-1].Start)
	holidays, err := tx.ListHolidays(ctx, est.ID, from, to)
	if err != nil {
		return domain.Calendar{}, err
	}

	return domain.BuildCalendar(est, weekdays, holidays)
}
