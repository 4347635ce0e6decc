package mailqueue

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

// Queue is the email_outbox table.
type Queue struct {
	db *gorm.DB
}

func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// EnqueueEmail stores the email once per dedupe key.
func (q *Queue) EnqueueEmail(ctx context.Context, e outbox.Email) error {
	row := models.EmailOutbox{
		To:        e.To,
		Subject:   e.Subject,
		Text:      e.Text,
		HTML:      e.HTML,
		DedupeKey: e.DedupeKey,
		Status:    StatusPending,
	}

	err := q.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedupe_key"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}

func (q *Queue) Pending(ctx context.Context, limit int) ([]models.EmailOutbox, error) {
	var rows []models.EmailOutbox
	err := q.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list pending emails: %w", err)
	}
	return rows, nil
}

func (q *Queue) MarkSent(ctx context.Context, id uint, at time.Time) error {
	return q.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   StatusSent,
			"sent_at":  at,
			"attempts": gorm.Expr("attempts + 1"),
		}).Error
}

// MarkFailed counts the attempt; the row leaves the queue after maxAttempts.
func (q *Queue) MarkFailed(ctx context.Context, id uint, cause string, maxAttempts int) error {
	return q.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": truncate(cause, 500),
			"status":     gorm.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END", maxAttempts, StatusFailed, StatusPending),
		}).Error
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ outbox.EmailQueue = (*Queue)(nil)
