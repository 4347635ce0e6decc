package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DamasoSilva/Platzgo-sub000/internal/dto"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httpresp"
	"github.com/DamasoSilva/Platzgo-sub000/internal/middleware"
	ucBooking "github.com/DamasoSilva/Platzgo-sub000/internal/usecase/booking"
)

type BlockHandler struct {
	slots  *ReservationHandler
	create *ucBooking.CreateBlock
	delete *ucBooking.DeleteBlock
}

// NewBlockHandler reuses the reservation handler to resolve local times.
func NewBlockHandler(slots *ReservationHandler, create *ucBooking.CreateBlock, del *ucBooking.DeleteBlock) *BlockHandler {
	return &BlockHandler{slots: slots, create: create, delete: del}
}

type CreateBlockRequest struct {
	SlotRequest
	Note string `json:"note"`
}

func (h *BlockHandler) Create(c *gin.Context) {
	courtID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	start, end, err := h.slots.courtSlot(ctx, courtID, req.SlotRequest)
	if err != nil {
		writeError(c, err)
		return
	}

	block, err := h.create.Execute(ctx, ucBooking.CreateBlockInput{
		Actor:   middleware.ActorFrom(c),
		CourtID: courtID,
		Start:   start,
		End:     end,
		Note:    req.Note,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, dto.NewBlockDTO(*block))
}

func (h *BlockHandler) Delete(c *gin.Context) {
	courtID, ok := paramID(c, "id")
	if !ok {
		return
	}
	blockID, ok := paramID(c, "blockId")
	if !ok {
		return
	}

	err := h.delete.Execute(c.Request.Context(), ucBooking.DeleteBlockInput{
		Actor:   middleware.ActorFrom(c),
		CourtID: courtID,
		BlockID: blockID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
