package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/httperr"
)

const rescheduleIndex = "idx_reservations_rescheduled_from"

// Postgres SQLSTATEs that mean "try again".
var retryableStates = map[string]bool{
	"55P03": true, // lock_not_available
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"57014": true, // query_canceled (statement/lock timeout)
}

// translate maps driver errors to domain errors; business errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if httperr.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if retryableStates[pgErr.Code] {
			return domain.ErrConflict
		}
		if pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, rescheduleIndex) {
			return domain.ErrAlreadyRescheduled
		}
	}
	return err
}
