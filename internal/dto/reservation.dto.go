package dto

import (
	"time"

	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

type ReservationDTO struct {
	ID                uint       `json:"id"`
	CourtID           uint       `json:"court_id"`
	CustomerID        *uint      `json:"customer_id"`
	CustomerName      string     `json:"customer_name,omitempty"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	TotalPriceCents   int64      `json:"total_price_cents"`
	Status            string     `json:"status"`
	CancelReason      *string    `json:"cancel_reason,omitempty"`
	CancelFeeCents    int64      `json:"cancel_fee_cents,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	RescheduledFromID *uint      `json:"rescheduled_from_id,omitempty"`
	SeriesID          *string    `json:"series_id,omitempty"`
	CreatedByOwner    bool       `json:"created_by_owner"`
}

func NewReservationDTO(r models.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:                r.ID,
		CourtID:           r.CourtID,
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		TotalPriceCents:   r.TotalPriceCents,
		Status:            r.Status,
		CancelReason:      r.CancelReason,
		CancelFeeCents:    r.CancelFeeCents,
		ConfirmedAt:       r.ConfirmedAt,
		CancelledAt:       r.CancelledAt,
		RescheduledFromID: r.RescheduledFromID,
		SeriesID:          r.SeriesID,
		CreatedByOwner:    r.CreatedByOwner,
	}
}

func NewReservationList(rs []models.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewReservationDTO(r))
	}
	return out
}

type PaymentDTO struct {
	ID            uint   `json:"id"`
	ReservationID uint   `json:"reservation_id"`
	Provider      string `json:"provider"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amount_cents"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
}

func NewPaymentList(ps []models.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPaymentDTO(p))
	}
	return out
}

func NewPaymentDTO(p models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		Provider:      p.Provider,
		Status:        p.Status,
		AmountCents:   p.AmountCents,
		CheckoutURL:   p.CheckoutURL,
	}
}

type ScheduleItemDTO struct {
	ReservationDTO
	// posição na fila de pendentes concorrentes
	Position int `json:"position,omitempty"`
}

type BlockDTO struct {
	ID        uint      `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Note      string    `json:"note,omitempty"`
}

func NewBlockDTO(b models.Block) BlockDTO {
	return BlockDTO{ID: b.ID, StartTime: b.StartTime, EndTime: b.EndTime, Note: b.Note}
}

type DayScheduleDTO struct {
	CourtID      uint              `json:"court_id"`
	Date         string            `json:"date"`
	Reservations []ScheduleItemDTO `json:"reservations"`
	Blocks       []BlockDTO        `json:"blocks"`
}
