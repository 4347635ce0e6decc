package models

import "time"

type Notification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	Kind          string     `gorm:"size:50;not null" json:"kind"`
	Title         string     `gorm:"size:150;not null" json:"title"`
	Body          string     `gorm:"type:text" json:"body"`
	ReservationID *uint      `json:"reservation_id"`
	ReadAt        *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`
}

type EmailOutbox struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	To        string `gorm:"size:150;not null" json:"to"`
	Subject   string `gorm:"size:200;not null" json:"subject"`
	Text      string `gorm:"type:text" json:"text"`
	HTML      string `gorm:"type:text" json:"html"`
	DedupeKey string `gorm:"size:150;uniqueIndex;not null" json:"dedupe_key"`

	Status    string     `gorm:"size:20;index;default:'PENDING'" json:"status"`
	Attempts  int        `gorm:"default:0" json:"attempts"`
	LastError string     `gorm:"size:500" json:"last_error"`
	SentAt    *time.Time `json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AccountInvite struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"size:100;index;not null" json:"email"`
	TokenHash     string    `gorm:"size:255;not null" json:"-"`
	ReservationID uint      `json:"reservation_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	AcceptedAt    *time.Time `json:"accepted_at"`

	CreatedAt time.Time `json:"created_at"`
}
