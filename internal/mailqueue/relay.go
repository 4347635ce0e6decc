package mailqueue

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DamasoSilva/Platzgo-sub000/internal/kafka"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

type Store interface {
	Pending(ctx context.Context, limit int) ([]models.EmailOutbox, error)
	MarkSent(ctx context.Context, id uint, at time.Time) error
	MarkFailed(ctx context.Context, id uint, cause string, maxAttempts int) error
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type RelayConfig struct {
	Topic       string
	BatchSize   int
	Interval    time.Duration
	MaxAttempts int
}

// Relay drains pending outbox rows into the email topic.
type Relay struct {
	store Store
	pub   Publisher
	cfg   RelayConfig
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewRelay(store Store, pub Publisher, cfg RelayConfig, log logrus.FieldLogger) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Relay{store: store, pub: pub, cfg: cfg, log: log, now: time.Now}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, err := r.RunOnce(ctx)
			if err != nil {
				r.log.WithError(err).Error("email relay pass failed")
				continue
			}
			if sent > 0 {
				r.log.WithField("sent", sent).Info("email relay pass")
			}
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce relays one batch and returns how many rows were published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	rows, err := r.store.Pending(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, row := range rows {
		msg := kafka.EmailMessage{
			ID:        row.ID,
			To:        row.To,
			Subject:   row.Subject,
			Text:      row.Text,
			HTML:      row.HTML,
			DedupeKey: row.DedupeKey,
		}

		if err := r.pub.Publish(ctx, r.cfg.Topic, row.DedupeKey, msg); err != nil {
			fields := logrus.Fields{"email_id": row.ID, "attempt": row.Attempts + 1}
			r.log.WithError(err).WithFields(fields).Warn("email publish failed")
			if mErr := r.store.MarkFailed(ctx, row.ID, err.Error(), r.cfg.MaxAttempts); mErr != nil {
				r.log.WithError(mErr).WithFields(fields).Error("email mark failed")
			}
			continue
		}

		if err := r.store.MarkSent(ctx, row.ID, r.now()); err != nil {
			// a mensagem já saiu; o consumidor deduplica pela chave
			r.log.WithError(err).WithField("email_id", row.ID).Error("email mark sent")
			continue
		}
		sent++
	}
	return sent, nil
}
