package booking

import "time"

// PriceCents = round(rate × minutes/60), minus the long-booking discount
// when minutes reaches thresholdMinutes.
func PriceCents(ratePerHourCents int64, minutes, discountPercent, thresholdMinutes int) int64 {
	if minutes <= 0 || ratePerHourCents <= 0 {
		return 0
	}
	price := roundDiv(ratePerHourCents*int64(minutes), 60)
	if discountPercent > 0 && minutes >= thresholdMinutes {
		if discountPercent > 100 {
			discountPercent = 100
		}
		price = roundDiv(price*int64(100-discountPercent), 100)
	}
	return price
}

type CancelPolicy struct {
	MinNoticeHours int
	FeePercent     int
	FeeFixedCents  int64
}

// Fee returns the fee for cancelling at now and whether the notice window applies.
func (p CancelPolicy) Fee(priceCents int64, start, now time.Time) (int64, bool) {
	if p.MinNoticeHours <= 0 {
		return 0, false
	}
	if start.Sub(now) >= time.Duration(p.MinNoticeHours)*time.Hour {
		return 0, false
	}

	fee := p.FeeFixedCents
	if pct := roundDiv(priceCents*int64(p.FeePercent), 100); pct > fee {
		fee = pct
	}
	if fee < 0 {
		fee = 0
	}
	return fee, true
}

func roundDiv(n, d int64) int64 {
	if n < 0 {
		return -roundDiv(-n, d)
	}
	return (n + d/2) / d
}
