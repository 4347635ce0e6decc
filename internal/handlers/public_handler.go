package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

type PublicEstablishment struct {
	ID                    uint    `json:"id"`
	Name                  string  `json:"name"`
	Slug                  string  `json:"slug"`
	Phone                 string  `json:"phone"`
	Timezone              string  `json:"timezone"`
	OpenWeekdays          []int64 `json:"open_weekdays"`
	OpeningTime           string  `json:"opening_time"`
	ClosingTime           string  `json:"closing_time"`
	RequiresConfirmation  bool    `json:"requires_confirmation"`
	OnlinePaymentRequired bool    `json:"online_payment_required"`
	CancelMinHours        int     `json:"cancel_min_hours"`
}

func publicEstablishment(e *models.Establishment) PublicEstablishment {
	return PublicEstablishment{
		ID:                    e.ID,
		Name:                  e.Name,
		Slug:                  e.Slug,
		Phone:                 e.Phone,
		Timezone:              e.Timezone,
		OpenWeekdays:          e.OpenWeekdays,
		OpeningTime:           e.OpeningTime,
		ClosingTime:           e.ClosingTime,
		RequiresConfirmation:  e.RequiresConfirmation,
		OnlinePaymentRequired: e.OnlinePaymentRequired,
		CancelMinHours:        e.CancelMinHours,
	}
}

////////////////////////////////////////////////////////
// COURTS
////////////////////////////////////////////////////////

func (h *PublicHandler) ListCourts(c *gin.Context) {
	slug := c.Param("slug")

	var est models.Establishment
	if err := h.db.WithContext(c.Request.Context()).Where("slug = ?", slug).First(&est).Error; err != nil {
		httperr.NotFound(c, "establishment_not_found", "Estabelecimento não encontrado.")
		return
	}

	var courts []models.Court
	if err := h.db.WithContext(c.Request.Context()).
		Where("establishment_id = ? AND is_active = true", est.ID).
		Order("id ASC").
		Find(&courts).Error; err != nil {

		httperr.Internal(c, "failed_to_list_courts", "Erro ao listar quadras.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"establishment": publicEstablishment(&est),
		"courts":        courts,
	})
}
