package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DamasoSilva/Platzgo-sub000/internal/dto"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httpresp"
	"github.com/DamasoSilva/Platzgo-sub000/internal/middleware"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "Usuário não encontrado.")
		return
	}

	var establishments []models.Establishment
	h.db.WithContext(c.Request.Context()).
		Where("owner_id = ?", user.ID).
		Order("id ASC").
		Find(&establishments)

	c.JSON(http.StatusOK, gin.H{
		"user":           userResponse(&user),
		"establishments": establishments,
	})
}

// ListReservations lista as reservas do cliente, mais recentes primeiro.
func (h *MeHandler) ListReservations(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	q := h.db.WithContext(c.Request.Context()).Where("customer_id = ?", userID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := q.Order("start_time DESC").Limit(200).Find(&reservations).Error; err != nil {
		httperr.Internal(c, "failed_to_list_reservations", "Erro ao listar reservas.")
		return
	}

	httpresp.List(c, dto.NewReservationList(reservations))
}

func (h *MeHandler) ListNotifications(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)

	q := h.db.WithContext(c.Request.Context()).Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		q = q.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		httperr.Internal(c, "failed_to_list_notifications", "Erro ao listar notificações.")
		return
	}

	httpresp.List(c, notifications)
}

func (h *MeHandler) MarkNotificationRead(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var n models.Notification
	err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "notification_not_found", "Notificação não encontrada.")
		return
	}
	if err != nil {
		httperr.Internal(c, "failed_to_get_notification", "Erro ao buscar notificação.")
		return
	}

	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
		if err := h.db.WithContext(c.Request.Context()).Save(&n).Error; err != nil {
			httperr.Internal(c, "failed_to_update_notification", "Erro ao atualizar notificação.")
			return
		}
	}

	httpresp.OK(c, n)
}
