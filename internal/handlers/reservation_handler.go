package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/dto"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httpresp"
	"github.com/DamasoSilva/Platzgo-sub000/internal/middleware"
	"github.com/DamasoSilva/Platzgo-sub000/internal/timezone"
	ucBooking "github.com/DamasoSilva/Platzgo-sub000/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type ReservationUseCases struct {
	Create      *ucBooking.CreateReservation
	CreateOwner *ucBooking.CreateOwnerReservation
	Confirm     *ucBooking.ConfirmReservation
	Cancel      *ucBooking.CancelReservation
	Reschedule  *ucBooking.RescheduleReservation
	Schedule    *ucBooking.CourtSchedule
}

type ReservationHandler struct {
	reader domain.Reader
	uc     ReservationUseCases
}

func NewReservationHandler(reader domain.Reader, uc ReservationUseCases) *ReservationHandler {
	return &ReservationHandler{reader: reader, uc: uc}
}

// ======================================================
// REQUESTS
// ======================================================

// Date/StartTime/EndTime são lidos no fuso do estabelecimento.
type SlotRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type CreateReservationRequest struct {
	SlotRequest
	RepeatWeeks int  `json:"repeat_weeks" binding:"min=0"`
	PayOnline   bool `json:"pay_online"`
}

type CreateOwnerReservationRequest struct {
	SlotRequest
	RepeatWeeks   int    `json:"repeat_weeks" binding:"min=0"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone string `json:"customer_phone"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// HELPERS
// ======================================================

// courtSlot converte o horário local informado para o intervalo da quadra.
func (h *ReservationHandler) courtSlot(ctx context.Context, courtID uint, req SlotRequest) (time.Time, time.Time, error) {
	court, err := h.reader.GetCourt(ctx, courtID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	est, err := h.reader.GetEstablishment(ctx, court.EstablishmentID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := timezone.ParseLocal(est.Timezone, req.Date, req.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InvalidRequest("invalid date or start_time")
	}
	end, err := timezone.ParseLocal(est.Timezone, req.Date, req.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InvalidRequest("invalid end_time")
	}
	return start, end, nil
}

// ======================================================
// CREATE (cliente)
// ======================================================

func (h *ReservationHandler) Create(c *gin.Context) {
	courtID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	start, end, err := h.courtSlot(ctx, courtID, req.SlotRequest)
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := h.uc.Create.Execute(ctx, ucBooking.CreateReservationInput{
		Actor:       middleware.ActorFrom(c),
		CourtID:     courtID,
		Start:       start,
		End:         end,
		RepeatWeeks: req.RepeatWeeks,
		PayOnline:   req.PayOnline,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, createdResponse(out))
}

// ======================================================
// CREATE (dono)
// ======================================================

func (h *ReservationHandler) CreateByOwner(c *gin.Context) {
	courtID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CreateOwnerReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	start, end, err := h.courtSlot(ctx, courtID, req.SlotRequest)
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := h.uc.CreateOwner.Execute(ctx, ucBooking.CreateOwnerReservationInput{
		Actor:         middleware.ActorFrom(c),
		CourtID:       courtID,
		Start:         start,
		End:           end,
		RepeatWeeks:   req.RepeatWeeks,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, createdResponse(out))
}

func createdResponse(out *ucBooking.CreateReservationOutput) gin.H {
	return gin.H{
		"series_id":    out.SeriesID,
		"reservations": dto.NewReservationList(out.Reservations),
		"payments":     dto.NewPaymentList(out.Payments),
	}
}

// ======================================================
// CONFIRM
// ======================================================

func (h *ReservationHandler) Confirm(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	out, err := h.uc.Confirm.Execute(c.Request.Context(), ucBooking.ConfirmReservationInput{
		Actor:         middleware.ActorFrom(c),
		ReservationID: id,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	cancelled := make([]gin.H, 0, len(out.AutoCancelled))
	for _, o := range out.AutoCancelled {
		cancelled = append(cancelled, gin.H{
			"reservation_id": o.ReservationID,
			"position":       o.Position,
			"refunded":       o.Refunded,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"reservation":    dto.NewReservationDTO(out.Reservation),
		"auto_cancelled": cancelled,
	})
}

// ======================================================
// CANCEL
// ======================================================

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CancelReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	out, err := h.uc.Cancel.Execute(c.Request.Context(), ucBooking.CancelReservationInput{
		Actor:         middleware.ActorFrom(c),
		ReservationID: id,
		Reason:        req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservation": dto.NewReservationDTO(out.Reservation),
		"fee_cents":   out.FeeCents,
		"refunded":    out.Refunded,
	})
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *ReservationHandler) Reschedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	current, err := h.reader.GetReservation(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	start, end, err := h.courtSlot(ctx, current.CourtID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := h.uc.Reschedule.Execute(ctx, ucBooking.RescheduleReservationInput{
		Actor:         middleware.ActorFrom(c),
		ReservationID: id,
		Start:         start,
		End:           end,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original":    dto.NewReservationDTO(out.Original),
		"reservation": dto.NewReservationDTO(out.Reservation),
	})
}

// ======================================================
// AGENDA DO DIA
// ======================================================

func (h *ReservationHandler) DaySchedule(c *gin.Context) {
	courtID, ok := paramID(c, "id")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		writeError(c, domain.InvalidRequest("date is required"))
		return
	}

	out, err := h.uc.Schedule.Execute(c.Request.Context(), courtID, date)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	court, err := h.reader.GetCourt(ctx, courtID)
	if err != nil {
		writeError(c, err)
		return
	}
	est, err := h.reader.GetEstablishment(ctx, court.EstablishmentID)
	if err != nil {
		writeError(c, err)
		return
	}
	actor := middleware.ActorFrom(c)
	manager := actor.IsAdmin() || (actor.Role == domain.RoleOwner && est.OwnerID == actor.ID)

	resp := dto.DayScheduleDTO{
		CourtID:      out.CourtID,
		Date:         out.Date,
		Reservations: make([]dto.ScheduleItemDTO, 0, len(out.Reservations)),
		Blocks:       make([]dto.BlockDTO, 0, len(out.Blocks)),
	}
	for _, it := range out.Reservations {
		item := dto.ScheduleItemDTO{
			ReservationDTO: dto.NewReservationDTO(it.Reservation),
			Position:       it.Position,
		}
		// terceiros veem só o horário ocupado
		if !manager && !ownsReservation(actor, it.Reservation.CustomerID) {
			item.CustomerID = nil
			item.CustomerName = ""
		}
		resp.Reservations = append(resp.Reservations, item)
	}
	for _, b := range out.Blocks {
		resp.Blocks = append(resp.Blocks, dto.NewBlockDTO(b))
	}

	c.JSON(http.StatusOK, resp)
}

func ownsReservation(actor domain.Actor, customerID *uint) bool {
	return customerID != nil && *customerID == actor.ID
}
