package booking

import "time"

// Settings is passed explicitly into every use case.
type Settings struct {
	MaxRepeatWeeksCustomer int
	MaxRepeatWeeksOwner    int

	RateLimitMax    int
	RateLimitWindow time.Duration

	RescheduleStepMinutes       int
	LongBookingThresholdMinutes int

	DefaultPaymentProvider string
	AppBaseURL             string
	InviteTTL              time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		MaxRepeatWeeksCustomer:      3,
		MaxRepeatWeeksOwner:         12,
		RateLimitMax:                10,
		RateLimitWindow:             10 * time.Minute,
		RescheduleStepMinutes:       30,
		LongBookingThresholdMinutes: 90,
		DefaultPaymentProvider:      "mercadopago",
		AppBaseURL:                  "http://localhost:3000",
		InviteTTL:                   7 * 24 * time.Hour,
	}
}
