package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

// Publisher fans a stored notification out to live consumers.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Event is the message published for every stored notification.
type Event struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	ReservationID  *uint  `json:"reservation_id,omitempty"`
}

type Sink struct {
	db  *gorm.DB
	pub Publisher
	log logrus.FieldLogger
}

// NewSink stores notifications; pub may be nil when no broker is configured.
func NewSink(db *gorm.DB, pub Publisher, log logrus.FieldLogger) *Sink {
	return &Sink{db: db, pub: pub, log: log}
}

func (s *Sink) Notify(ctx context.Context, n outbox.Notification) error {
	row := models.Notification{
		UserID:        n.UserID,
		Kind:          n.Kind,
		Title:         n.Title,
		Body:          n.Body,
		ReservationID: n.ReservationID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	if s.pub == nil {
		return nil
	}

	// a linha já está salva: falha no broker só gera log
	if err := s.pub.PublishJSON(ctx, RoutingKey(n.Kind), EventFor(row)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"notification_id": row.ID,
			"kind":            row.Kind,
		}).Warn("notification publish failed")
	}
	return nil
}

func EventFor(row models.Notification) Event {
	return Event{
		NotificationID: row.ID,
		UserID:         row.UserID,
		Kind:           row.Kind,
		Title:          row.Title,
		Body:           row.Body,
		ReservationID:  row.ReservationID,
	}
}

// RoutingKey maps a kind like "reservation_confirmed" to "notification.reservation.confirmed".
func RoutingKey(kind string) string {
	return "notification." + strings.ReplaceAll(strings.ToLower(kind), "_", ".")
}

var _ outbox.Notifier = (*Sink)(nil)
