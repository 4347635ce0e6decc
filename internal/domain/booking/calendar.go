package booking

import (
	"fmt"
	"time"

	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

// ClockTime is minutes since local midnight.
type ClockTime int

func ParseClock(hm string) (ClockTime, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", hm, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On ancora o horário na data de day (no fuso de day).
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, day.Location())
}

type Hours struct {
	Open  ClockTime
	Close ClockTime
}

// HoursOverride replaces only the sides that are set.
type HoursOverride struct {
	Open  *ClockTime
	Close *ClockTime
}

func (o HoursOverride) apply(base Hours) Hours {
	if o.Open != nil {
		base.Open = *o.Open
	}
	if o.Close != nil {
		base.Close = *o.Close
	}
	return base
}

type HolidayOverride struct {
	Open  bool
	Hours HoursOverride
	Note  string
}

type Calendar struct {
	OpenWeekdays [7]bool
	Default      Hours
	Weekday      map[time.Weekday]HoursOverride
	Holidays     map[string]HolidayOverride // YYYY-MM-DD
}

type DayWindow struct {
	Hours   Hours
	Open    time.Time
	Close   time.Time
	Holiday bool
	Note    string
}

// ===============================
// Resolution
// ===============================

func (c Calendar) Resolve(day time.Time) (DayWindow, error) {
	hol, isHoliday := c.Holidays[DateKey(day)]

	if isHoliday && !hol.Open {
		if hol.Note != "" {
			return DayWindow{}, httperr.Wrap(CodeEstablishmentClosed, hol.Note)
		}
		return DayWindow{}, ErrEstablishmentClosed
	}
	if !isHoliday && !c.OpenWeekdays[day.Weekday()] {
		return DayWindow{}, ErrEstablishmentClosed
	}

	hours := c.Default
	if ov, ok := c.Weekday[day.Weekday()]; ok {
		hours = ov.apply(hours)
	}
	if isHoliday {
		hours = hol.Hours.apply(hours)
	}

	if hours.Close <= hours.Open {
		return DayWindow{}, ErrInvalidOperatingHours
	}

	return DayWindow{
		Hours:   hours,
		Open:    hours.Open.On(day),
		Close:   hours.Close.On(day),
		Holiday: isHoliday,
		Note:    hol.Note,
	}, nil
}

// CheckInterval resolves the start day and requires iv to fit inside it.
func (c Calendar) CheckInterval(iv Interval) (DayWindow, error) {
	w, err := c.Resolve(iv.Start)
	if err != nil {
		return DayWindow{}, err
	}
	if !iv.SameDay() {
		return DayWindow{}, ErrOutsideOperatingHours
	}
	if iv.Start.Before(w.Open) || iv.End.After(w.Close) {
		return DayWindow{}, ErrOutsideOperatingHours
	}
	return w, nil
}

// ===============================
// Model conversion
// ===============================

func BuildCalendar(
	est *models.Establishment,
	weekdays []models.WeekdayHours,
	holidays []models.Holiday,
) (Calendar, error) {

	open, err := ParseClock(est.OpeningTime)
	if err != nil {
		return Calendar{}, ErrInvalidOperatingHours
	}
	closeAt, err := ParseClock(est.ClosingTime)
	if err != nil {
		return Calendar{}, ErrInvalidOperatingHours
	}

	cal := Calendar{
		Default:  Hours{Open: open, Close: closeAt},
		Weekday:  make(map[time.Weekday]HoursOverride, len(weekdays)),
		Holidays: make(map[string]HolidayOverride, len(holidays)),
	}
	for _, d := range est.OpenWeekdays {
		if d >= 0 && d < 7 {
			cal.OpenWeekdays[d] = true
		}
	}

	for _, wh := range weekdays {
		if wh.Weekday < 0 || wh.Weekday > 6 {
			continue
		}
		ov, err := parseOverride(wh.OpeningTime, wh.ClosingTime)
		if err != nil {
			return Calendar{}, err
		}
		cal.Weekday[time.Weekday(wh.Weekday)] = ov
	}

	for _, h := range holidays {
		ov, err := parseOverride(h.OpeningTime, h.ClosingTime)
		if err != nil {
			return Calendar{}, err
		}
		cal.Holidays[h.Date] = HolidayOverride{Open: h.IsOpen, Hours: ov, Note: h.Note}
	}

	return cal, nil
}

func parseOverride(openHM, closeHM string) (HoursOverride, error) {
	var ov HoursOverride
	if openHM != "" {
		c, err := ParseClock(openHM)
		if err != nil {
			return ov, ErrInvalidOperatingHours
		}
		ov.Open = &c
	}
	if closeHM != "" {
		c, err := ParseClock(closeHM)
		if err != nil {
			return ov, ErrInvalidOperatingHours
		}
		ov.Close = &c
	}
	return ov, nil
}
