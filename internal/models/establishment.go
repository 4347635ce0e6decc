package models

import (
	"time"

	"github.com/lib/pq"
)

type Establishment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID uint   `gorm:"index;not null" json:"owner_id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Slug    string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone   string `gorm:"size:20" json:"phone"`

	Timezone string `gorm:"size:64;default:'America/Sao_Paulo'" json:"timezone"`

	// Weekdays (0 = Sunday) the establishment opens when no holiday says otherwise.
	OpenWeekdays pq.Int64Array `gorm:"type:integer[]" json:"open_weekdays"`
	OpeningTime  string        `gorm:"size:5;not null;default:'08:00'" json:"opening_time"`
	ClosingTime  string        `gorm:"size:5;not null;default:'22:00'" json:"closing_time"`

	BufferMinutes         int    `gorm:"default:0" json:"buffer_minutes"`
	RequiresConfirmation  bool   `gorm:"default:true" json:"requires_confirmation"`
	OnlinePaymentRequired bool   `gorm:"default:false" json:"online_payment_required"`
	PaymentProvider       string `gorm:"size:20" json:"payment_provider"`

	CancelMinHours      int   `gorm:"default:0" json:"cancel_min_hours"`
	CancelFeePercent    int   `gorm:"default:0" json:"cancel_fee_percent"`
	CancelFeeFixedCents int64 `gorm:"default:0" json:"cancel_fee_fixed_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeekdayHours overrides the default opening/closing time for one weekday.
// An empty side falls back to the establishment default.
type WeekdayHours struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	EstablishmentID uint   `gorm:"uniqueIndex:idx_weekday_hours_est_day;not null" json:"establishment_id"`
	Weekday         int    `gorm:"uniqueIndex:idx_weekday_hours_est_day;not null" json:"weekday"`
	OpeningTime     string `gorm:"size:5" json:"opening_time"`
	ClosingTime     string `gorm:"size:5" json:"closing_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Holiday struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	EstablishmentID uint   `gorm:"uniqueIndex:idx_holidays_est_date;not null" json:"establishment_id"`
	Date            string `gorm:"size:10;uniqueIndex:idx_holidays_est_date;not null" json:"date"` // YYYY-MM-DD
	IsOpen          bool   `gorm:"default:false" json:"is_open"`
	OpeningTime     string `gorm:"size:5" json:"opening_time"`
	ClosingTime     string `gorm:"size:5" json:"closing_time"`
	Note            string `gorm:"size:255" json:"note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
