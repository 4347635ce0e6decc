package booking

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

var tracer = otel.Tracer("github.com/DamasoSilva/Platzgo-sub000/internal/usecase/booking")

// IntentSink recebe os efeitos colaterais depois do commit.
type IntentSink interface {
	Dispatch(b outbox.Batch)
}

type RateLimiter interface {
	// Allow consumes cost units from key's rolling window.
	Allow(ctx context.Context, key string, cost int) (bool, error)
}

// Env groups what every use case needs.
type Env struct {
	Store    domain.Store
	Intents  IntentSink
	Clock    domain.Clock
	Settings domain.Settings
	Log      logrus.FieldLogger
}

// commit runs fn in one transaction and dispatches its intents only if it committed.
func (e Env) commit(ctx context.Context, fn func(ctx context.Context, tx domain.Tx, b *outbox.Batch) error) error {
	var batch outbox.Batch
	err := e.Store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		batch = outbox.Batch{}
		return fn(ctx, tx, &batch)
	})
	if err != nil {
		return err
	}
	e.Intents.Dispatch(batch)
	return nil
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if code := httperr.CodeOf(err); code != "" {
			span.SetStatus(codes.Error, code)
		} else {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

func ownsEstablishment(actor domain.Actor, est *models.Establishment) bool {
	return actor.IsAdmin() || (actor.Role == domain.RoleOwner && actor.ID != 0 && actor.ID == est.OwnerID)
}

func idPtr(id uint) *uint { return &id }

func rateKey(userID uint) string {
	return fmt.Sprintf("reservations:user:%d", userID)
}

func inactiveCourt(court *models.Court) error {
	if court.InactiveReason != "" {
		return httperr.Wrap(domain.CodeCourtInactive, court.InactiveReason)
	}
	return domain.ErrCourtInactive
}
