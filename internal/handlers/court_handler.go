package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httpresp"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

type CourtHandler struct {
	db *gorm.DB
}

func NewCourtHandler(db *gorm.DB) *CourtHandler {
	return &CourtHandler{db: db}
}

// --------- Requests ---------

type CreateCourtRequest struct {
	Name                       string `json:"name" binding:"required"`
	PricePerHourCents          int64  `json:"price_per_hour_cents" binding:"required,min=0"`
	LongBookingDiscountPercent int    `json:"long_booking_discount_percent" binding:"min=0,max=100"`
}

type UpdateCourtRequest struct {
	Name                       *string `json:"name,omitempty"`
	PricePerHourCents          *int64  `json:"price_per_hour_cents,omitempty" binding:"omitempty,min=0"`
	LongBookingDiscountPercent *int    `json:"long_booking_discount_percent,omitempty" binding:"omitempty,min=0,max=100"`
	IsActive                   *bool   `json:"is_active,omitempty"`
	InactiveReason             *string `json:"inactive_reason,omitempty"`
}

func applyCourtUpdate(court *models.Court, req UpdateCourtRequest) {
	if req.Name != nil {
		court.Name = *req.Name
	}
	if req.PricePerHourCents != nil {
		court.PricePerHourCents = *req.PricePerHourCents
	}
	if req.LongBookingDiscountPercent != nil {
		court.LongBookingDiscountPercent = *req.LongBookingDiscountPercent
	}
	if req.InactiveReason != nil {
		court.InactiveReason = *req.InactiveReason
	}
	if req.IsActive != nil {
		court.IsActive = *req.IsActive
		if court.IsActive {
			court.InactiveReason = ""
		}
	}
}

// --------- Handlers ---------

func (h *CourtHandler) List(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}

	q := h.db.WithContext(c.Request.Context()).Where("establishment_id = ?", est.ID)

	switch strings.TrimSpace(c.Query("active")) {
	case "true":
		q = q.Where("is_active = ?", true)
	case "false":
		q = q.Where("is_active = ?", false)
	}

	var courts []models.Court
	if err := q.Order("id ASC").Find(&courts).Error; err != nil {
		httperr.Internal(c, "failed_to_list_courts", "Erro ao listar quadras.")
		return
	}

	c.JSON(http.StatusOK, courts)
}

func (h *CourtHandler) Create(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}

	var req CreateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	court := models.Court{
		EstablishmentID:            est.ID,
		Name:                       req.Name,
		PricePerHourCents:          req.PricePerHourCents,
		LongBookingDiscountPercent: req.LongBookingDiscountPercent,
		IsActive:                   true,
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Establishment").Create(&court).Error; err != nil {
		httperr.Internal(c, "failed_to_create_court", "Erro ao criar quadra.")
		return
	}

	httpresp.Created(c, court)
}

func (h *CourtHandler) Update(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}
	courtID, ok := paramID(c, "courtId")
	if !ok {
		return
	}

	var court models.Court
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND establishment_id = ?", courtID, est.ID).
		First(&court).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "court_not_found", "Quadra não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_court", "Erro ao buscar quadra.")
		return
	}

	var req UpdateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	applyCourtUpdate(&court, req)

	// o lock da quadra nas reservas concorre com este update; ativo/inativo vale para o próximo pedido
	if err := h.db.WithContext(c.Request.Context()).Omit("Establishment").Save(&court).Error; err != nil {
		httperr.Internal(c, "failed_to_update_court", "Erro ao atualizar quadra.")
		return
	}

	c.JSON(http.StatusOK, court)
}
