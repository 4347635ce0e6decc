package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/middleware"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/timezone"
)

var (
	errEmailTaken = errors.New("email taken")
	errSlugTaken  = errors.New("slug taken")
)

type EstablishmentHandler struct {
	db *gorm.DB
}

func NewEstablishmentHandler(db *gorm.DB) *EstablishmentHandler {
	return &EstablishmentHandler{db: db}
}

// --------- Requests ---------

type UpdateEstablishmentRequest struct {
	Name                  *string `json:"name"`
	Phone                 *string `json:"phone"`
	Timezone              *string `json:"timezone"`
	OpenWeekdays          []int64 `json:"open_weekdays"`
	OpeningTime           *string `json:"opening_time"`
	ClosingTime           *string `json:"closing_time"`
	BufferMinutes         *int    `json:"buffer_minutes"`
	RequiresConfirmation  *bool   `json:"requires_confirmation"`
	OnlinePaymentRequired *bool   `json:"online_payment_required"`
	CancelMinHours        *int    `json:"cancel_min_hours"`
	CancelFeePercent      *int    `json:"cancel_fee_percent"`
	CancelFeeFixedCents   *int64  `json:"cancel_fee_fixed_cents"`
}

type WeekdayHoursConfig struct {
	Weekday     int    `json:"weekday" binding:"min=0,max=6"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

type WeekdayHoursUpdateRequest struct {
	Days []WeekdayHoursConfig `json:"days" binding:"required,dive"`
}

type HolidayRequest struct {
	IsOpen      bool   `json:"is_open"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
	Note        string `json:"note"`
}

// --------- Helpers ---------

func createEstablishment(tx *gorm.DB, ownerID uint, req EstablishmentSignup) (*models.Establishment, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	var count int64
	tx.Model(&models.Establishment{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		return nil, errSlugTaken
	}

	est := models.Establishment{
		OwnerID:              ownerID,
		Name:                 req.Name,
		Slug:                 slug,
		Phone:                req.Phone,
		Timezone:             normalizeTimezone(req.Timezone),
		OpenWeekdays:         pq.Int64Array{0, 1, 2, 3, 4, 5, 6},
		OpeningTime:          "08:00",
		ClosingTime:          "22:00",
		RequiresConfirmation: true,
	}
	if err := tx.Create(&est).Error; err != nil {
		return nil, err
	}
	return &est, nil
}

// loadOwnedEstablishment carrega o estabelecimento se o usuário for dono (ou admin).
func loadOwnedEstablishment(c *gin.Context, db *gorm.DB) (*models.Establishment, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var est models.Establishment
	if err := db.WithContext(c.Request.Context()).First(&est, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "establishment_not_found", "Estabelecimento não encontrado.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_establishment", "Erro ao buscar estabelecimento.")
		return nil, false
	}

	actor := middleware.ActorFrom(c)
	if !actor.IsAdmin() && (actor.Role != domain.RoleOwner || est.OwnerID != actor.ID) {
		httperr.Forbidden(c, domain.CodePermissionDenied, "Sem permissão para este estabelecimento.")
		return nil, false
	}
	return &est, true
}

func validClock(hm string, optional bool) bool {
	if hm == "" {
		return optional
	}
	_, err := domain.ParseClock(hm)
	return err == nil
}

func validHoliday(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// applyEstablishmentUpdate valida e aplica os campos enviados.
func applyEstablishmentUpdate(est *models.Establishment, req UpdateEstablishmentRequest) (string, bool) {
	if req.Name != nil {
		est.Name = *req.Name
	}
	if req.Phone != nil {
		est.Phone = *req.Phone
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			return "invalid_timezone", false
		}
		est.Timezone = *req.Timezone
	}
	if req.OpenWeekdays != nil {
		for _, d := range req.OpenWeekdays {
			if d < 0 || d > 6 {
				return "invalid_weekday", false
			}
		}
		est.OpenWeekdays = pq.Int64Array(req.OpenWeekdays)
	}
	if req.OpeningTime != nil {
		if !validClock(*req.OpeningTime, false) {
			return domain.CodeInvalidOperatingHours, false
		}
		est.OpeningTime = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		if !validClock(*req.ClosingTime, false) {
			return domain.CodeInvalidOperatingHours, false
		}
		est.ClosingTime = *req.ClosingTime
	}
	if req.BufferMinutes != nil {
		if *req.BufferMinutes < 0 {
			return "invalid_buffer", false
		}
		est.BufferMinutes = *req.BufferMinutes
	}
	if req.RequiresConfirmation != nil {
		est.RequiresConfirmation = *req.RequiresConfirmation
	}
	if req.OnlinePaymentRequired != nil {
		est.OnlinePaymentRequired = *req.OnlinePaymentRequired
	}
	if req.CancelMinHours != nil {
		if *req.CancelMinHours < 0 {
			return "invalid_cancel_policy", false
		}
		est.CancelMinHours = *req.CancelMinHours
	}
	if req.CancelFeePercent != nil {
		if *req.CancelFeePercent < 0 || *req.CancelFeePercent > 100 {
			return "invalid_cancel_policy", false
		}
		est.CancelFeePercent = *req.CancelFeePercent
	}
	if req.CancelFeeFixedCents != nil {
		if *req.CancelFeeFixedCents < 0 {
			return "invalid_cancel_policy", false
		}
		est.CancelFeeFixedCents = *req.CancelFeeFixedCents
	}
	return "", true
}

// --------- Handlers ---------

func (h *EstablishmentHandler) Get(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, est)
}

func (h *EstablishmentHandler) Update(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}

	var req UpdateEstablishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if code, ok := applyEstablishmentUpdate(est, req); !ok {
		httperr.BadRequest(c, code, "Configuração inválida.")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(est).Error; err != nil {
		httperr.Internal(c, "failed_to_update_establishment", "Erro ao salvar as configurações.")
		return
	}

	c.JSON(http.StatusOK, est)
}

func (h *EstablishmentHandler) GetWeekdayHours(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}

	var hours []models.WeekdayHours
	if err := h.db.WithContext(c.Request.Context()).
		Where("establishment_id = ?", est.ID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {

		httperr.Internal(c, "failed_to_get_weekday_hours", "Erro ao buscar horários.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

// UpdateWeekdayHours substitui todas as exceções por dia da semana.
func (h *EstablishmentHandler) UpdateWeekdayHours(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}

	var req WeekdayHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var toCreate []models.WeekdayHours
	for _, d := range req.Days {
		if !validClock(d.OpeningTime, true) || !validClock(d.ClosingTime, true) {
			httperr.BadRequest(c, domain.CodeInvalidOperatingHours, "Horário inválido.")
			return
		}
		toCreate = append(toCreate, models.WeekdayHours{
			EstablishmentID: est.ID,
			Weekday:         d.Weekday,
			OpeningTime:     d.OpeningTime,
			ClosingTime:     d.ClosingTime,
		})
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("establishment_id = ?", est.ID).Delete(&models.WeekdayHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_weekday_hours", "Erro ao salvar horários.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *EstablishmentHandler) PutHoliday(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}

	date := c.Param("date")
	if !validHoliday(date) {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	var req HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !validClock(req.OpeningTime, true) || !validClock(req.ClosingTime, true) {
		httperr.BadRequest(c, domain.CodeInvalidOperatingHours, "Horário inválido.")
		return
	}

	holiday := models.Holiday{
		EstablishmentID: est.ID,
		Date:            date,
		IsOpen:          req.IsOpen,
		OpeningTime:     req.OpeningTime,
		ClosingTime:     req.ClosingTime,
		Note:            req.Note,
	}

	err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "establishment_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_open", "opening_time", "closing_time", "note", "updated_at"}),
		}).
		Create(&holiday).Error
	if err != nil {
		httperr.Internal(c, "failed_to_save_holiday", "Erro ao salvar feriado.")
		return
	}

	c.JSON(http.StatusOK, holiday)
}

func (h *EstablishmentHandler) DeleteHoliday(c *gin.Context) {
	est, ok := loadOwnedEstablishment(c, h.db)
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("establishment_id = ? AND date = ?", est.ID, c.Param("date")).
		Delete(&models.Holiday{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_holiday", "Erro ao remover feriado.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "holiday_not_found", "Feriado não encontrado.")
		return
	}

	c.Status(http.StatusNoContent)
}
