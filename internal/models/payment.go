package models

import "time"

type Payment struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ReservationID uint   `gorm:"index;not null" json:"reservation_id"`
	Provider      string `gorm:"size:20;not null" json:"provider"`
	Status        string `gorm:"size:20;index;default:'PENDING'" json:"status"`
	AmountCents   int64  `json:"amount_cents"`

	CheckoutID        string `gorm:"size:100" json:"checkout_id"`
	CheckoutURL       string `gorm:"size:500" json:"checkout_url"`
	ProviderPaymentID string `gorm:"size:100;index" json:"provider_payment_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
