package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

type BookingGormRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewBookingGormRepository: lockTimeout bounds every row-lock wait (0 disables).
func NewBookingGormRepository(db *gorm.DB, lockTimeout time.Duration) *BookingGormRepository {
	return &BookingGormRepository{db: db, lockTimeout: lockTimeout}
}

// WithinTx runs fn in READ COMMITTED; the court row lock (SELECT ... FOR UPDATE)
// is what linearizes conflicting writers.
func (r *BookingGormRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if r.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(ctx, &gormTx{db: db})
	})
	return translate(err)
}

// --------------------------------------------------
// Reader (sem lock)
// --------------------------------------------------

func (r *BookingGormRepository) GetCourt(ctx context.Context, id uint) (*models.Court, error) {
	var court models.Court
	if err := r.db.WithContext(ctx).First(&court, id).Error; err != nil {
		return nil, translate(err)
	}
	return &court, nil
}

func (r *BookingGormRepository) GetEstablishment(ctx context.Context, id uint) (*models.Establishment, error) {
	return getEstablishment(r.db.WithContext(ctx), id)
}

func (r *BookingGormRepository) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	return getReservation(r.db.WithContext(ctx), id)
}

func (r *BookingGormRepository) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	return getPayment(r.db.WithContext(ctx), id)
}

func (r *BookingGormRepository) ListCourtReservations(
	ctx context.Context,
	courtID uint,
	iv domain.Interval,
) ([]models.Reservation, error) {

	return listOverlapping(r.db.WithContext(ctx), domain.OverlapQuery{
		CourtID:  courtID,
		Interval: iv,
		Statuses: domain.ActiveStatuses,
	})
}

func (r *BookingGormRepository) ListCourtBlocks(
	ctx context.Context,
	courtID uint,
	iv domain.Interval,
) ([]models.Block, error) {

	return listBlocks(r.db.WithContext(ctx), courtID, iv)
}

// --------------------------------------------------
// Queries shared by reader and tx
// --------------------------------------------------

func getEstablishment(db *gorm.DB, id uint) (*models.Establishment, error) {
	var est models.Establishment
	if err := db.First(&est, id).Error; err != nil {
		return nil, translate(err)
	}
	return &est, nil
}

func getReservation(db *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := db.First(&res, id).Error; err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

func getPayment(db *gorm.DB, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := db.First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func listOverlapping(db *gorm.DB, q domain.OverlapQuery) ([]models.Reservation, error) {
	query := db.Model(&models.Reservation{}).
		Where("start_time < ? AND end_time > ?", q.Interval.End, q.Interval.Start)

	if q.CourtID != 0 {
		query = query.Where("court_id = ?", q.CourtID)
	}
	if q.CustomerID != 0 {
		query = query.Where("customer_id = ?", q.CustomerID)
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if len(q.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", q.ExcludeIDs)
	}

	var out []models.Reservation
	if err := query.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func listBlocks(db *gorm.DB, courtID uint, iv domain.Interval) ([]models.Block, error) {
	var out []models.Block
	if err := db.
		Where("court_id = ? AND start_time < ? AND end_time > ?", courtID, iv.End, iv.Start).
		Order("start_time ASC").
		Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Compile-time check
var _ domain.Store = (*BookingGormRepository)(nil)

// --------------------------------------------------
// Tx
// --------------------------------------------------

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockCourt(ctx context.Context, id uint) (*models.Court, error) {
	var court models.Court
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&court, id).Error; err != nil {
		return nil, translate(err)
	}
	return &court, nil
}

func (t *gormTx) LockUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (t *gormTx) GetEstablishment(ctx context.Context, id uint) (*models.Establishment, error) {
	return getEstablishment(t.db.WithContext(ctx), id)
}

func (t *gormTx) ListWeekdayHours(ctx context.Context, establishmentID uint) ([]models.WeekdayHours, error) {
	var out []models.WeekdayHours
	if err := t.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (t *gormTx) ListHolidays(ctx context.Context, establishmentID uint, fromDate, toDate string) ([]models.Holiday, error) {
	var out []models.Holiday
	if err := t.db.WithContext(ctx).
		Where("establishment_id = ? AND date >= ? AND date <= ?", establishmentID, fromDate, toDate).
		Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (t *gormTx) ListOverlapping(ctx context.Context, q domain.OverlapQuery) ([]models.Reservation, error) {
	return listOverlapping(t.db.WithContext(ctx), q)
}

func (t *gormTx) ListBlocksOverlapping(ctx context.Context, courtID uint, iv domain.Interval) ([]models.Block, error) {
	return listBlocks(t.db.WithContext(ctx), courtID, iv)
}

func (t *gormTx) ListActivePasses(ctx context.Context, courtID uint, month string, weekday int) ([]models.MonthlyPass, error) {
	var out []models.MonthlyPass
	if err := t.db.WithContext(ctx).
		Where(
			"court_id = ? AND month = ? AND weekday = ? AND status = ?",
			courtID, month, weekday, string(domain.PassActive),
		).
		Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (t *gormTx) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	return getReservation(t.db.WithContext(ctx), id)
}

func (t *gormTx) HasRescheduleOf(ctx context.Context, reservationID uint) (bool, error) {
	var count int64
	if err := t.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("rescheduled_from_id = ?", reservationID).
		Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (t *gormTx) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error)
}

func (t *gormTx) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Save(r).Error)
}

func (t *gormTx) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	return getPayment(t.db.WithContext(ctx), id)
}

func (t *gormTx) GetPaymentByReservation(ctx context.Context, reservationID uint) (*models.Payment, error) {
	var out []models.Payment
	if err := t.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("id DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (t *gormTx) CreatePayment(ctx context.Context, p *models.Payment) error {
	return translate(t.db.WithContext(ctx).Create(p).Error)
}

func (t *gormTx) UpdatePayment(ctx context.Context, p *models.Payment) error {
	return translate(t.db.WithContext(ctx).Save(p).Error)
}

func (t *gormTx) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := t.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (t *gormTx) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var out []models.User
	if err := t.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (t *gormTx) CreateInvite(ctx context.Context, inv *models.AccountInvite) error {
	return translate(t.db.WithContext(ctx).Create(inv).Error)
}

func (t *gormTx) GetBlock(ctx context.Context, id uint) (*models.Block, error) {
	var b models.Block
	if err := t.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (t *gormTx) CreateBlock(ctx context.Context, b *models.Block) error {
	return translate(t.db.WithContext(ctx).Create(b).Error)
}

func (t *gormTx) DeleteBlock(ctx context.Context, id uint) error {
	return translate(t.db.WithContext(ctx).Delete(&models.Block{}, id).Error)
}

var _ domain.Tx = (*gormTx)(nil)
