package booking

import (
	"context"

	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

// Store abre unidades de trabalho e expõe leituras sem lock.
type Store interface {
	Reader

	// WithinTx runs fn in one transaction. Any error from fn rolls back every write.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Reader serves the unlocked listing paths.
type Reader interface {
	GetCourt(ctx context.Context, id uint) (*models.Court, error)
	GetEstablishment(ctx context.Context, id uint) (*models.Establishment, error)
	GetReservation(ctx context.Context, id uint) (*models.Reservation, error)
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)

	// Non-cancelled reservations of a court overlapping iv, ordered by arrival.
	ListCourtReservations(ctx context.Context, courtID uint, iv Interval) ([]models.Reservation, error)
	ListCourtBlocks(ctx context.Context, courtID uint, iv Interval) ([]models.Block, error)
}

type OverlapQuery struct {
	CourtID    uint // 0 = any court
	CustomerID uint // 0 = any customer
	Interval   Interval
	Statuses   []Status
	ExcludeIDs []uint
}

type Tx interface {
	// -------- Locks (always court before user) --------
	LockCourt(ctx context.Context, id uint) (*models.Court, error)
	LockUser(ctx context.Context, id uint) (*models.User, error)

	// -------- Establishment / calendar --------
	GetEstablishment(ctx context.Context, id uint) (*models.Establishment, error)
	ListWeekdayHours(ctx context.Context, establishmentID uint) ([]models.WeekdayHours, error)
	ListHolidays(ctx context.Context, establishmentID uint, fromDate, toDate string) ([]models.Holiday, error)

	// -------- Claims --------
	// ListOverlapping returns matches ordered by created_at, id.
	ListOverlapping(ctx context.Context, q OverlapQuery) ([]models.Reservation, error)
	ListBlocksOverlapping(ctx context.Context, courtID uint, iv Interval) ([]models.Block, error)
	ListActivePasses(ctx context.Context, courtID uint, month string, weekday int) ([]models.MonthlyPass, error)

	// -------- Reservation --------
	GetReservation(ctx context.Context, id uint) (*models.Reservation, error)
	HasRescheduleOf(ctx context.Context, reservationID uint) (bool, error)
	CreateReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservation(ctx context.Context, r *models.Reservation) error

	// -------- Payment --------
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
	// GetPaymentByReservation returns nil, nil when the reservation has no payment.
	GetPaymentByReservation(ctx context.Context, reservationID uint) (*models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	UpdatePayment(ctx context.Context, p *models.Payment) error

	// -------- Users / invites --------
	GetUser(ctx context.Context, id uint) (*models.User, error)
	// FindUserByEmail returns nil, nil when no account exists.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateInvite(ctx context.Context, inv *models.AccountInvite) error

	// -------- Blocks --------
	GetBlock(ctx context.Context, id uint) (*models.Block, error)
	CreateBlock(ctx context.Context, b *models.Block) error
	DeleteBlock(ctx context.Context, id uint) error
}
