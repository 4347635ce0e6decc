package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

// Logger persists audit intents as AuditLog rows.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) RecordAudit(ctx context.Context, e outbox.AuditEntry) error {
	row := Row(e)
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Row maps an intent to its table row. Metadata that cannot be encoded is dropped.
func Row(e outbox.AuditEntry) models.AuditLog {
	var metaJSON string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	return models.AuditLog{
		UserID:   e.ActorID,
		Action:   e.Action,
		Entity:   e.Entity,
		EntityID: e.EntityID,
		Metadata: metaJSON,
	}
}

var _ outbox.AuditSink = (*Logger)(nil)
