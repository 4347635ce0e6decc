package booking

import "time"

// Interval é semiaberto: [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

func DurationMinutes(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, ErrInvalidInterval
	}
	return int(end.Sub(start) / time.Minute), nil
}

func (iv Interval) Minutes() int {
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// ExpandWithBuffer is only meant for conflict probes, never for pricing or display.
func (iv Interval) ExpandWithBuffer(bufferMinutes int) Interval {
	if bufferMinutes < 0 {
		bufferMinutes = 0
	}
	pad := time.Duration(bufferMinutes) * time.Minute
	return Interval{Start: iv.Start.Add(-pad), End: iv.End.Add(pad)}
}

func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

func (iv Interval) Contains(o Interval) bool {
	return !o.Start.Before(iv.Start) && !o.End.After(iv.End)
}

// SameDay compara as datas no fuso do início.
func (iv Interval) SameDay() bool {
	loc := iv.Start.Location()
	y1, m1, d1 := iv.Start.Date()
	y2, m2, d2 := iv.End.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (iv Interval) In(loc *time.Location) Interval {
	return Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
}

// AddWeeks keeps the local wall-clock time of both ends.
func (iv Interval) AddWeeks(n int) Interval {
	return Interval{
		Start: iv.Start.AddDate(0, 0, 7*n),
		End:   iv.End.AddDate(0, 0, 7*n),
	}
}

func IsAligned(t time.Time, stepMinutes int) bool {
	if stepMinutes <= 0 {
		return true
	}
	if t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	return t.Minute()%stepMinutes == 0
}

// DayBounds devolve [00:00, 00:00 do dia seguinte) no fuso de t.
func DayBounds(t time.Time) Interval {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
