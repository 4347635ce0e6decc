package booking

import (
	"context"
	"strings"
	"time"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

type CreateBlockInput struct {
	Actor   domain.Actor
	CourtID uint
	Start   time.Time
	End     time.Time
	Note    string
}

type CreateBlock struct {
	env Env
}

func NewCreateBlock(env Env) *CreateBlock {
	return &CreateBlock{env: env}
}

func (uc *CreateBlock) Execute(ctx context.Context, in CreateBlockInput) (out *models.Block, err error) {
	ctx, span := startSpan(ctx, "booking.CreateBlock")
	defer func() { endSpan(span, err) }()

	iv, err := domain.NewInterval(in.Start, in.End)
	if err != nil {
		return nil, err
	}

	err = uc.env.commit(ctx, func(ctx context.Context, tx domain.Tx, batch *outbox.Batch) error {
		court, err := tx.LockCourt(ctx, in.CourtID)
		if err != nil {
			return err
		}
		est, err := tx.GetEstablishment(ctx, court.EstablishmentID)
		if err != nil {
			return err
		}
		if !ownsEstablishment(in.Actor, est) {
			return domain.ErrPermissionDenied
		}

		// Reservas com buffer não podem encostar no bloqueio.
		taken, err := tx.ListOverlapping(ctx, domain.OverlapQuery{
			CourtID:  court.ID,
			Interval: iv.ExpandWithBuffer(est.BufferMinutes),
			Statuses: domain.ActiveStatuses,
		})
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return domain.ErrSlotReserved
		}

		b := &models.Block{
			CourtID:     court.ID,
			StartTime:   iv.Start,
			EndTime:     iv.End,
			Note:        strings.TrimSpace(in.Note),
			CreatedByID: in.Actor.ID,
		}
		if err := tx.CreateBlock(ctx, b); err != nil {
			return err
		}

		batch.Audit(outbox.AuditEntry{
			ActorID:  in.Actor.UserID(),
			Action:   "block_created",
			Entity:   "block",
			EntityID: idPtr(b.ID),
		})
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type DeleteBlockInput struct {
	Actor   domain.Actor
	CourtID uint
	BlockID uint
}

type DeleteBlock struct {
	env Env
}

func NewDeleteBlock(env Env) *DeleteBlock {
	return &DeleteBlock{env: env}
}

func (uc *DeleteBlock) Execute(ctx context.Context, in DeleteBlockInput) (err error) {
	ctx, span := startSpan(ctx, "booking.DeleteBlock")
	defer func() { endSpan(span, err) }()

	return uc.env.commit(ctx, func(ctx context.Context, tx domain.Tx, batch *outbox.Batch) error {
		court, err := tx.LockCourt(ctx, in.CourtID)
		if err != nil {
			return err
		}
		est, err := tx.GetEstablishment(ctx, court.EstablishmentID)
		if err != nil {
			return err
		}
		if !ownsEstablishment(in.Actor, est) {
			return domain.ErrPermissionDenied
		}

		b, err := tx.GetBlock(ctx, in.BlockID)
		if err != nil {
			return err
		}
		if b.CourtID != court.ID {
			return domain.ErrNotFound
		}
		if err := tx.DeleteBlock(ctx, b.ID); err != nil {
			return err
		}

		batch.Audit(outbox.AuditEntry{
			ActorID:  in.Actor.UserID(),
			Action:   "block_deleted",
			Entity:   "block",
			EntityID: idPtr(b.ID),
		})
		return nil
	})
}
