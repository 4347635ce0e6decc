package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/DamasoSilva/Platzgo-sub000/internal/config"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Establishment{},
		&models.WeekdayHours{},
		&models.Holiday{},
		&models.Court{},
		&models.Reservation{},
		&models.Block{},
		&models.MonthlyPass{},
		&models.Payment{},
		&models.Notification{},
		&models.EmailOutbox{},
		&models.AccountInvite{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	// ajustes que o AutoMigrate não expressa
	for _, stmt := range []string{
		`UPDATE establishments SET timezone = 'America/Sao_Paulo' WHERE timezone IS NULL OR timezone = ''`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_customer_window ON reservations (customer_id, start_time, end_time) WHERE status <> 'CANCELLED'`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate fixup: %w", err)
		}
	}
	return nil
}
