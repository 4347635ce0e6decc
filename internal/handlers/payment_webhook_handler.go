package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/dto"
	"github.com/DamasoSilva/Platzgo-sub000/internal/payment"
	ucBooking "github.com/DamasoSilva/Platzgo-sub000/internal/usecase/booking"
)

// ProviderLookup resolves a provider notification that only names the provider's payment id.
type ProviderLookup interface {
	LookupPayment(ctx context.Context, providerPaymentID string) (payment.Notice, error)
}

type PaymentWebhookHandler struct {
	apply  *ucBooking.ApplyPaymentStatus
	lookup ProviderLookup
	log    logrus.FieldLogger
}

// lookup pode ser nil: só o formato interno é aceito.
func NewPaymentWebhookHandler(apply *ucBooking.ApplyPaymentStatus, lookup ProviderLookup, log logrus.FieldLogger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{apply: apply, lookup: lookup, log: log}
}

// PaymentNotification aceita dois formatos:
//   - interno: payment_id + status (vocabulário interno ou do provedor)
//   - MercadoPago: {"type":"payment","data":{"id":"..."}}, resolvido via API
type PaymentNotification struct {
	PaymentID         uint   `json:"payment_id"`
	Status            string `json:"status"`
	ProviderPaymentID string `json:"provider_payment_id"`

	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (h *PaymentWebhookHandler) Receive(c *gin.Context) {
	var req PaymentNotification
	// corpo vazio é válido: o provedor pode mandar tudo na query string
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}
	// notificações antigas do provedor chegam só na query string
	if req.Type == "" {
		req.Type = c.Query("type")
	}
	if req.Data.ID == "" {
		req.Data.ID = c.Query("data.id")
	}

	if req.PaymentID == 0 && req.Data.ID != "" {
		if req.Type != "payment" {
			h.log.WithField("type", req.Type).Info("provider notification ignored")
			c.JSON(http.StatusAccepted, gin.H{"status": "ignored"})
			return
		}
		if h.lookup == nil {
			writeError(c, domain.InvalidRequest("provider notifications are not enabled"))
			return
		}
		notice, err := h.lookup.LookupPayment(c.Request.Context(), req.Data.ID)
		if err != nil {
			h.log.WithError(err).WithField("provider_payment_id", req.Data.ID).Warn("provider payment lookup failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider_lookup_failed"})
			return
		}
		req.PaymentID = notice.PaymentID
		req.Status = notice.Status
		req.ProviderPaymentID = notice.ProviderPaymentID
	}

	if req.PaymentID == 0 || req.Status == "" {
		writeError(c, domain.InvalidRequest("payment_id and status are required"))
		return
	}

	status, ok := resolvePaymentStatus(req.Status)
	if !ok {
		h.log.WithFields(logrus.Fields{
			"payment_id": req.PaymentID,
			"status":     req.Status,
		}).Info("payment notification ignored")
		c.JSON(http.StatusAccepted, gin.H{"status": "ignored"})
		return
	}

	out, err := h.apply.Execute(c.Request.Context(), ucBooking.ApplyPaymentStatusInput{
		PaymentID:         req.PaymentID,
		Status:            status,
		ProviderPaymentID: req.ProviderPaymentID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment":     dto.NewPaymentDTO(out.Payment),
		"reservation": dto.NewReservationDTO(out.Reservation),
	})
}

func resolvePaymentStatus(s string) (domain.PaymentStatus, bool) {
	switch st := domain.PaymentStatus(strings.ToUpper(s)); st {
	case domain.PaymentAuthorized, domain.PaymentPaid, domain.PaymentFailed,
		domain.PaymentRefunded, domain.PaymentCancelled:
		return st, true
	}
	return payment.StatusFromProvider(strings.ToLower(s))
}
