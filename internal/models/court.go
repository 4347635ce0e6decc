package models

import "time"

type Court struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	EstablishmentID uint          `gorm:"index;not null" json:"establishment_id"`
	Establishment   Establishment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Name              string `gorm:"size:100;not null" json:"name"`
	PricePerHourCents int64  `gorm:"not null" json:"price_per_hour_cents"`
	// Applied when a booking lasts at least the long-booking threshold.
	LongBookingDiscountPercent int `gorm:"default:0" json:"long_booking_discount_percent"`

	IsActive       bool   `gorm:"default:true" json:"is_active"`
	InactiveReason string `gorm:"size:255" json:"inactive_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
