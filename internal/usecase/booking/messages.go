package booking

import (
	"fmt"
	"html"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

const (
	KindReservationCreated       = "reservation_created"
	KindReservationConfirmed     = "reservation_confirmed"
	KindReservationCancelled     = "reservation_cancelled"
	KindReservationAutoCancelled = "reservation_auto_cancelled"
	KindReservationRescheduled   = "reservation_rescheduled"
	KindCascadeSummary           = "cascade_summary"
)

const (
	ReasonRescheduled   = "rescheduled"
	ReasonSlotTaken     = "Horário confirmado para outra reserva"
	ReasonPaymentFailed = "payment failed"

	ReasonCheckoutAbandoned = "checkout abandoned"
)

func when(r *models.Reservation) string {
	return fmt.Sprintf("%s das %s às %s",
		r.StartTime.Format("02/01/2006"),
		r.StartTime.Format("15:04"),
		r.EndTime.Format("15:04"),
	)
}

func dedupeKey(r *models.Reservation, event string) string {
	return fmt.Sprintf("reservation:%d:%s", r.ID, event)
}

func createdEmail(to string, court *models.Court, r *models.Reservation) outbox.Email {
	if r.Status == string(domain.StatusConfirmed) {
		return outbox.Email{
			To:        to,
			Subject:   "Reserva confirmada",
			Text:      fmt.Sprintf("Sua reserva na %s em %s está confirmada.", court.Name, when(r)),
			HTML:      fmt.Sprintf("<p>Sua reserva na <b>%s</b> em %s está confirmada.</p>", html.EscapeString(court.Name), when(r)),
			DedupeKey: dedupeKey(r, "confirmed"),
		}
	}
	return outbox.Email{
		To:        to,
		Subject:   "Reserva recebida",
		Text:      fmt.Sprintf("Recebemos sua reserva na %s em %s. Ela aguarda confirmação.", court.Name, when(r)),
		HTML:      fmt.Sprintf("<p>Recebemos sua reserva na <b>%s</b> em %s. Ela aguarda confirmação.</p>", html.EscapeString(court.Name), when(r)),
		DedupeKey: dedupeKey(r, "pending"),
	}
}

func confirmedEmail(to string, r *models.Reservation) outbox.Email {
	return outbox.Email{
		To:        to,
		Subject:   "Reserva confirmada",
		Text:      fmt.Sprintf("Sua reserva de %s foi confirmada.", when(r)),
		HTML:      fmt.Sprintf("<p>Sua reserva de %s foi confirmada.</p>", when(r)),
		DedupeKey: dedupeKey(r, "confirmed"),
	}
}

func cancelledEmail(to string, r *models.Reservation, event string) outbox.Email {
	reason := ""
	if r.CancelReason != nil {
		reason = *r.CancelReason
	}
	return outbox.Email{
		To:        to,
		Subject:   "Reserva cancelada",
		Text:      fmt.Sprintf("Sua reserva de %s foi cancelada. Motivo: %s", when(r), reason),
		HTML:      fmt.Sprintf("<p>Sua reserva de %s foi cancelada.</p><p>Motivo: %s</p>", when(r), html.EscapeString(reason)),
		DedupeKey: dedupeKey(r, event),
	}
}

func inviteEmail(to, link string, r *models.Reservation) outbox.Email {
	return outbox.Email{
		To:        to,
		Subject:   "Sua reserva foi registrada",
		Text:      fmt.Sprintf("Registramos sua reserva de %s. Crie sua conta: %s", when(r), link),
		HTML:      fmt.Sprintf("<p>Registramos sua reserva de %s.</p><p><a href=\"%s\">Crie sua conta</a></p>", when(r), html.EscapeString(link)),
		DedupeKey: fmt.Sprintf("invite:%s:%d", to, r.ID),
	}
}

func auditEntry(actorID *uint, action string, r *models.Reservation, meta any) outbox.AuditEntry {
	return outbox.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "reservation",
		EntityID: idPtr(r.ID),
		Metadata: meta,
	}
}
