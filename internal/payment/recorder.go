package payment

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

// Recorder stores the checkout opened for a payment row.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) RecordCheckout(ctx context.Context, paymentID uint, c outbox.Checkout) error {
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]any{
			"checkout_id":  c.CheckoutID,
			"checkout_url": c.CheckoutURL,
		}).Error
	if err != nil {
		return fmt.Errorf("record checkout: %w", err)
	}
	return nil
}

var _ outbox.CheckoutRecorder = (*Recorder)(nil)
