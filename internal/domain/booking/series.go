package booking

// ExpandWeekly returns base plus repeatWeeks weekly copies, in order.
func ExpandWeekly(base Interval, repeatWeeks int) []Interval {
	if repeatWeeks < 0 {
		repeatWeeks = 0
	}
	out := make([]Interval, 0, repeatWeeks+1)
	for k := 0; k <= repeatWeeks; k++ {
		out = append(out, base.AddWeeks(k))
	}
	return out
}
