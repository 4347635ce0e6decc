package models

import "time"

type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CourtID uint  `gorm:"index:idx_reservations_court_time,priority:1;not null" json:"court_id"`
	Court   Court `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	CustomerID    *uint  `gorm:"index" json:"customer_id"`
	CustomerName  string `gorm:"size:100" json:"customer_name"`
	CustomerEmail string `gorm:"size:100" json:"customer_email"`
	CustomerPhone string `gorm:"size:20" json:"customer_phone"`

	StartTime time.Time `gorm:"index:idx_reservations_court_time,priority:2;not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	TotalPriceCents int64  `json:"total_price_cents"`
	Status          string `gorm:"size:20;index;default:'PENDING'" json:"status"`

	CancelReason   *string    `gorm:"size:255" json:"cancel_reason"`
	CancelFeeCents int64      `gorm:"default:0" json:"cancel_fee_cents"`
	CancelledAt    *time.Time `json:"cancelled_at"`
	CancelledByID  *uint      `json:"cancelled_by_id"`
	ConfirmedAt    *time.Time `json:"confirmed_at"`

	RescheduledFromID *uint   `gorm:"uniqueIndex:idx_reservations_rescheduled_from" json:"rescheduled_from_id"`
	SeriesID          *string `gorm:"size:36;index" json:"series_id"`
	CreatedByOwner    bool    `gorm:"default:false" json:"created_by_owner"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Block struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourtID     uint      `gorm:"index;not null" json:"court_id"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Note        string    `gorm:"size:255" json:"note"`
	CreatedByID uint      `json:"created_by_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MonthlyPass struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CourtID    uint   `gorm:"index:idx_passes_slot,priority:1;not null" json:"court_id"`
	CustomerID uint   `gorm:"index;not null" json:"customer_id"`
	Month      string `gorm:"size:7;index:idx_passes_slot,priority:2;not null" json:"month"` // YYYY-MM
	Weekday    int    `gorm:"index:idx_passes_slot,priority:3;not null" json:"weekday"`
	StartTime  string `gorm:"size:5;not null" json:"start_time"`
	EndTime    string `gorm:"size:5;not null" json:"end_time"`
	Status     string `gorm:"size:20;default:'PENDING'" json:"status"`
	PriceCents int64  `json:"price_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
