package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
)

// status HTTP por código de negócio
var businessStatus = map[string]int{
	domain.CodeInvalidInterval:        http.StatusBadRequest,
	domain.CodeInvalidRequest:         http.StatusBadRequest,
	domain.CodeEstablishmentClosed:    http.StatusUnprocessableEntity,
	domain.CodeOutsideOperatingHours:  http.StatusUnprocessableEntity,
	domain.CodeInvalidOperatingHours:  http.StatusUnprocessableEntity,
	domain.CodeCancellationNotAllowed: http.StatusUnprocessableEntity,
	domain.CodeSlotReserved:           http.StatusConflict,
	domain.CodeSlotBlocked:            http.StatusConflict,
	domain.CodeSlotReservedByPass:     http.StatusConflict,
	domain.CodeDoubleBooking:          http.StatusConflict,
	domain.CodeAlreadyRescheduled:     http.StatusConflict,
	domain.CodeConflict:               http.StatusConflict,
	domain.CodeInvalidState:           http.StatusConflict,
	domain.CodePaymentNotReady:        http.StatusConflict,
	domain.CodeCourtInactive:          http.StatusConflict,
	domain.CodePermissionDenied:       http.StatusForbidden,
	domain.CodeNotFound:               http.StatusNotFound,
	domain.CodeRateLimited:            http.StatusTooManyRequests,
}

func writeError(c *gin.Context, err error) {
	status, ok := businessStatus[httperr.CodeOf(err)]
	if !ok {
		status = http.StatusBadRequest
	}
	if status == http.StatusTooManyRequests {
		c.Header("Retry-After", "60")
	}
	httperr.Business(c, status, err)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return uint(id), true
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"details": err.Error(),
	})
}
